package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrStalePrice is returned by a bid placement collaborator when the auction
// price moved between the snapshot and the placement attempt. The executor
// retries the full evaluate-then-place sequence once before giving up.
var ErrStalePrice = errors.New("auction price changed since snapshot")

// AuctionFacts is the read-only view of one auction used to build an
// evaluation snapshot. Lifecycle derivation (open/closed) happens upstream.
type AuctionFacts struct {
	AuctionID     string
	Closed        bool
	CurrentPrice  decimal.Decimal
	WinningUserID string
}

// UserIsWinning reports whether the given user currently holds the top bid.
func (f AuctionFacts) UserIsWinning(userID string) bool {
	return userID != "" && f.WinningUserID == userID
}
