// Package auctionhouse talks to the external auction service: it is both the
// auction facts provider and the bid placement collaborator of the engine.
package auctionhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autobid/internal/model"
	"autobid/internal/pkg/circuit"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Config holds the connection settings for the auction service.
type Config struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// Client is an HTTP client for the auction service with a circuit breaker in
// front of it so a dead service does not burn a whole cycle per agent.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *circuit.Breaker
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("auctionhouse: base url cannot be empty")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.APIToken),
		http:    &http.Client{Timeout: timeout},
		breaker: circuit.NewBreaker("auctionhouse", 5, 30*time.Second),
	}, nil
}

// AuctionFacts fetches the live snapshot facts for one auction.
func (c *Client) AuctionFacts(ctx context.Context, auctionID string) (model.AuctionFacts, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/auctions/%s", auctionID), nil, http.StatusOK)
	if err != nil {
		return model.AuctionFacts{}, err
	}
	priceRaw := gjson.GetBytes(body, "current_price").String()
	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		return model.AuctionFacts{}, fmt.Errorf("auctionhouse: bad current_price %q for auction %s: %w", priceRaw, auctionID, err)
	}
	return model.AuctionFacts{
		AuctionID:     auctionID,
		Closed:        gjson.GetBytes(body, "status").String() == "closed",
		CurrentPrice:  price,
		WinningUserID: gjson.GetBytes(body, "winning_user_id").String(),
	}, nil
}

// PlaceBid submits a bid. A 409 from the service means the price moved since
// the snapshot and maps to model.ErrStalePrice.
func (c *Client) PlaceBid(ctx context.Context, auctionID, userID string, amount decimal.Decimal) error {
	payload, err := json.Marshal(map[string]any{
		"user_id": userID,
		"amount":  amount.String(),
	})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/auctions/%s/bids", auctionID), payload, http.StatusCreated)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, wantStatus int) ([]byte, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("auctionhouse: circuit open, request dropped")
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("auctionhouse: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("auctionhouse: read response: %w", err)
	}
	switch {
	case resp.StatusCode == wantStatus:
		c.breaker.RecordSuccess()
		return body, nil
	case resp.StatusCode == http.StatusConflict:
		// A losing race is a normal outcome, not a service fault.
		c.breaker.RecordSuccess()
		return nil, model.ErrStalePrice
	default:
		c.breaker.RecordFailure()
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("auctionhouse: %s %s: status=%d %s", method, path, resp.StatusCode, msg)
	}
}
