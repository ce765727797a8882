package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"autobid/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *AgentStore {
	t.Helper()
	s, err := NewAgentStore(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func sampleAgent(id string) model.AgentConfig {
	return model.AgentConfig{
		ID:              id,
		AuctionID:       "auc-1",
		UserID:          "user-1",
		IsActive:        true,
		MaxBidAmount:    decPtr("150.50"),
		IncrementAmount: decPtr("2.25"),
		IntervalMinutes: 5,
		Conditions:      map[string]any{"max_price": 120.0},
	}
}

func TestAgentStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agent := sampleAgent("a1")
	last := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	next := last.Add(5 * time.Minute)
	agent.LastRunAt = &last
	agent.NextRunAt = &next

	require.NoError(t, s.Save(ctx, agent))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "auc-1", got.AuctionID)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.IsActive)
	assert.Equal(t, 5, got.IntervalMinutes)
	require.NotNil(t, got.MaxBidAmount)
	assert.True(t, got.MaxBidAmount.Equal(decimal.RequireFromString("150.50")))
	require.NotNil(t, got.IncrementAmount)
	assert.True(t, got.IncrementAmount.Equal(decimal.RequireFromString("2.25")))
	assert.Equal(t, map[string]any{"max_price": 120.0}, got.Conditions)
	require.NotNil(t, got.LastRunAt)
	assert.Equal(t, last, *got.LastRunAt)
	require.NotNil(t, got.NextRunAt)
	assert.Equal(t, next, *got.NextRunAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAgentStoreNilAmounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agent := sampleAgent("a1")
	agent.MaxBidAmount = nil
	agent.IncrementAmount = nil
	agent.Conditions = nil
	require.NoError(t, s.Save(ctx, agent))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got.MaxBidAmount)
	assert.Nil(t, got.IncrementAmount)
	assert.Empty(t, got.Conditions)
}

func TestAgentStoreGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAgentStoreSaveIsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agent := sampleAgent("a1")
	require.NoError(t, s.Save(ctx, agent))

	agent.MaxBidAmount = decPtr("999")
	agent.IsActive = false
	require.NoError(t, s.Save(ctx, agent))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.MaxBidAmount.Equal(decimal.RequireFromString("999")))
	assert.False(t, got.IsActive)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "saving twice must not duplicate the row")
}

func TestAgentStoreLoadDue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	due := sampleAgent("due")
	past := now.Add(-time.Minute)
	due.NextRunAt = &past

	never := sampleAgent("never-ran")
	never.NextRunAt = nil

	notYet := sampleAgent("not-yet")
	future := now.Add(time.Hour)
	notYet.NextRunAt = &future

	inactive := sampleAgent("inactive")
	inactive.IsActive = false
	inactive.NextRunAt = &past

	for _, a := range []model.AgentConfig{due, never, notYet, inactive} {
		require.NoError(t, s.Save(ctx, a))
	}

	got, err := s.LoadDue(ctx, now)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"due", "never-ran"}, ids)
}

func TestAgentStoreLoadDueOrderIsStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	// Distinct creation times drive the order.
	for i, id := range []string{"first", "second", "third"} {
		a := sampleAgent(id)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Save(ctx, a))
	}

	got, err := s.LoadDue(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "third", got[2].ID)
}

func TestAgentStoreDeactivate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleAgent("a1")))
	require.NoError(t, s.Deactivate(ctx, "a1"))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.MaxBidAmount.Equal(decimal.RequireFromString("150.50")), "deactivate must not touch other fields")

	err = s.Deactivate(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAgentStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewAgentStore("  ")
	assert.Error(t, err)
}
