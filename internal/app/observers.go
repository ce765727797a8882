package app

import (
	"context"
	"fmt"
	"time"

	"autobid/internal/decision"
	"autobid/internal/engine"
	"autobid/internal/gateway/notifier"
	"autobid/internal/logger"
	"autobid/internal/scheduler"
	"autobid/internal/store/outcomelog"
)

// recordOutcomes persists each cycle's outcomes to the history store.
func recordOutcomes(store *outcomelog.Store) scheduler.CycleObserver {
	return func(cycleID string, startedAt time.Time, outcomes []engine.Outcome) {
		recs := make([]outcomelog.Record, 0, len(outcomes))
		for _, out := range outcomes {
			rec := outcomelog.Record{
				CycleID:   cycleID,
				AgentID:   out.AgentID,
				AuctionID: out.AuctionID,
				Kind:      out.Kind(),
				Reason:    out.Decision.Reason,
				BidPlaced: out.BidPlaced,
				CreatedAt: startedAt,
			}
			if out.Decision.Kind == decision.KindPlaceBid {
				rec.Amount = out.Decision.Amount.String()
			}
			if out.Err != nil {
				rec.Error = out.Err.Error()
			}
			recs = append(recs, rec)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Insert(ctx, recs); err != nil {
			logger.Errorf("app: record outcomes failed: %v", err)
		}
	}
}

// notifyOutcomes pushes best-effort notifications for placed bids and
// stopped agents.
func notifyOutcomes(n notifier.TextNotifier) scheduler.CycleObserver {
	return func(_ string, _ time.Time, outcomes []engine.Outcome) {
		for _, out := range outcomes {
			var text string
			switch {
			case out.BidPlaced:
				text = fmt.Sprintf("🔨 Bid placed: %s on auction %s (%s)",
					out.Decision.Amount, out.AuctionID, out.Decision.Reason)
			case out.Decision.Kind == decision.KindStopAutoBid:
				text = fmt.Sprintf("⏹ AutoBid stopped for auction %s: %s",
					out.AuctionID, out.Decision.Reason)
			default:
				continue
			}
			if err := n.SendText(text); err != nil {
				logger.Warnf("app: notification failed: %v", err)
			}
		}
	}
}
