package admin

import (
	"fmt"
	"strings"
	"time"

	"autobid/internal/model"

	"github.com/shopspring/decimal"
)

// agentRequest is the create/update payload. Monetary fields are decimal
// strings to keep amounts exact across the wire.
type agentRequest struct {
	AuctionID       string         `json:"auction_id"`
	UserID          string         `json:"user_id"`
	MaxBidAmount    *string        `json:"max_bid_amount"`
	IncrementAmount *string        `json:"increment_amount"`
	IntervalMinutes int            `json:"interval_minutes"`
	Conditions      map[string]any `json:"conditions"`
}

func (r agentRequest) toAgent(id string) (model.AgentConfig, error) {
	agent := model.AgentConfig{
		ID:              id,
		AuctionID:       strings.TrimSpace(r.AuctionID),
		UserID:          strings.TrimSpace(r.UserID),
		IntervalMinutes: r.IntervalMinutes,
		IsActive:        true,
		Conditions:      r.Conditions,
	}
	if r.MaxBidAmount != nil {
		d, err := decimal.NewFromString(strings.TrimSpace(*r.MaxBidAmount))
		if err != nil {
			return model.AgentConfig{}, fmt.Errorf("max_bid_amount %q is not a decimal", *r.MaxBidAmount)
		}
		agent.MaxBidAmount = &d
	}
	if r.IncrementAmount != nil {
		d, err := decimal.NewFromString(strings.TrimSpace(*r.IncrementAmount))
		if err != nil {
			return model.AgentConfig{}, fmt.Errorf("increment_amount %q is not a decimal", *r.IncrementAmount)
		}
		agent.IncrementAmount = &d
	}
	return agent, agent.Validate()
}

type agentResponse struct {
	ID              string         `json:"id"`
	AuctionID       string         `json:"auction_id"`
	UserID          string         `json:"user_id"`
	MaxBidAmount    *string        `json:"max_bid_amount,omitempty"`
	IncrementAmount *string        `json:"increment_amount,omitempty"`
	IntervalMinutes int            `json:"interval_minutes"`
	IsActive        bool           `json:"is_active"`
	Conditions      map[string]any `json:"conditions,omitempty"`
	LastRunAt       *time.Time     `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time     `json:"next_run_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toResponse(a model.AgentConfig) agentResponse {
	resp := agentResponse{
		ID:              a.ID,
		AuctionID:       a.AuctionID,
		UserID:          a.UserID,
		IntervalMinutes: a.IntervalMinutes,
		IsActive:        a.IsActive,
		Conditions:      a.Conditions,
		LastRunAt:       a.LastRunAt,
		NextRunAt:       a.NextRunAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.MaxBidAmount != nil {
		s := a.MaxBidAmount.String()
		resp.MaxBidAmount = &s
	}
	if a.IncrementAmount != nil {
		s := a.IncrementAmount.String()
		resp.IncrementAmount = &s
	}
	return resp
}
