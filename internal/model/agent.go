package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AgentConfig is a user's auto-bid policy for a single auction.
//
// MaxBidAmount and IncrementAmount are optional; nil means unset. The engine
// flips IsActive to false when it decides to stop, it never deletes agents.
type AgentConfig struct {
	ID              string
	AuctionID       string
	UserID          string
	MaxBidAmount    *decimal.Decimal
	IncrementAmount *decimal.Decimal
	IntervalMinutes int
	IsActive        bool
	Conditions      map[string]any

	LastRunAt *time.Time
	NextRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the persisted invariants. A failing agent is surfaced as an
// error outcome and left active for operator inspection.
func (a AgentConfig) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("agent id is empty")
	}
	if strings.TrimSpace(a.AuctionID) == "" {
		return fmt.Errorf("agent %s: auction id is empty", a.ID)
	}
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("agent %s: user id is empty", a.ID)
	}
	if a.MaxBidAmount != nil && a.MaxBidAmount.IsNegative() {
		return fmt.Errorf("agent %s: max_bid_amount must be non-negative, got %s", a.ID, a.MaxBidAmount)
	}
	if a.IncrementAmount != nil && !a.IncrementAmount.IsPositive() {
		return fmt.Errorf("agent %s: increment_amount must be positive, got %s", a.ID, a.IncrementAmount)
	}
	if a.IntervalMinutes < 0 {
		return fmt.Errorf("agent %s: interval_minutes must not be negative, got %d", a.ID, a.IntervalMinutes)
	}
	return nil
}

// Interval returns the agent's re-evaluation cadence, or 0 when the agent is
// due on every cycle.
func (a AgentConfig) Interval() time.Duration {
	if a.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(a.IntervalMinutes) * time.Minute
}
