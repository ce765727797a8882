package decision

import "github.com/shopspring/decimal"

// Kind enumerates the outcomes of evaluating one agent against one snapshot.
type Kind int

const (
	// KindSkipBid means no action this cycle; the agent stays active.
	KindSkipBid Kind = iota
	// KindPlaceBid means a bid of Amount should be submitted.
	KindPlaceBid
	// KindStopAutoBid means the agent must be deactivated permanently.
	KindStopAutoBid
)

func (k Kind) String() string {
	switch k {
	case KindPlaceBid:
		return "place_bid"
	case KindSkipBid:
		return "skip_bid"
	case KindStopAutoBid:
		return "stop_auto_bid"
	default:
		return "unknown"
	}
}

// Decision is the tagged result of one evaluation. Amount is only meaningful
// for KindPlaceBid.
type Decision struct {
	Kind   Kind
	Amount decimal.Decimal
	Reason string
}

func Place(amount decimal.Decimal, reason string) Decision {
	return Decision{Kind: KindPlaceBid, Amount: amount, Reason: reason}
}

func Skip(reason string) Decision {
	return Decision{Kind: KindSkipBid, Reason: reason}
}

func Stop(reason string) Decision {
	return Decision{Kind: KindStopAutoBid, Reason: reason}
}
