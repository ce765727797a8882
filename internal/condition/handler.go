package condition

import (
	"time"

	"autobid/internal/model"

	"github.com/shopspring/decimal"
)

// Context is the immutable snapshot one evaluation reasons over. It is built
// per agent per cycle from live auction facts and discarded afterwards.
type Context struct {
	Agent         model.AgentConfig
	Closed        bool
	CurrentPrice  decimal.Decimal
	UserIsWinning bool
	Now           time.Time
}

// Handler recognizes one named condition on an agent and may gate the cycle
// or reshape the proposed bid amount.
//
// ShouldBid must not depend on the order handlers run in; any veto skips the
// whole cycle. ModifyBidAmount calls chain in registration order, each handler
// seeing the previous handler's output, so registration order is a deployment
// contract (see RegisterDefaults).
type Handler interface {
	// Name is the unique key matched against AgentConfig.Conditions.
	Name() string
	// ShouldBid decides whether bidding is permitted this cycle given the
	// raw configured value for this condition.
	ShouldBid(c Context, value any) bool
	// ModifyBidAmount may replace the amount computed so far. Returning
	// false leaves the amount untouched.
	ModifyBidAmount(c Context, value any, proposed decimal.Decimal) (decimal.Decimal, bool)
}
