package outcomelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "outcomes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(cycleID, agentID, kind string, at time.Time) Record {
	return Record{
		CycleID:   cycleID,
		AgentID:   agentID,
		AuctionID: "auc-1",
		Kind:      kind,
		Reason:    "All conditions met",
		Amount:    "95",
		BidPlaced: kind == "placed",
		CreatedAt: at,
	}
}

func TestInsertAndListByAgent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, []Record{
		rec("c1", "a1", "placed", base),
		rec("c1", "a2", "skipped", base),
		rec("c2", "a1", "skipped", base.Add(time.Minute)),
	}))

	got, err := s.ListByAgent(ctx, "a1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "c2", got[0].CycleID)
	assert.Equal(t, "skipped", got[0].Kind)
	assert.Equal(t, "c1", got[1].CycleID)
	assert.True(t, got[1].BidPlaced)
	assert.Equal(t, "95", got[1].Amount)
	assert.Equal(t, base, got[1].CreatedAt)
}

func TestListByAgentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	recs := make([]Record, 0, 5)
	for i := range 5 {
		recs = append(recs, rec("c1", "a1", "skipped", base.Add(time.Duration(i)*time.Second)))
	}
	require.NoError(t, s.Insert(ctx, recs))

	got, err := s.ListByAgent(ctx, "a1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListRecentAcrossAgents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, []Record{
		rec("c1", "a1", "placed", base),
		rec("c1", "a2", "error", base.Add(time.Second)),
	}))

	got, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].AgentID)
	assert.Equal(t, "a1", got[1].AgentID)
}

func TestInsertEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(context.Background(), nil))
}

func TestPurgeOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, []Record{
		rec("c1", "a1", "skipped", base.Add(-48*time.Hour)),
		rec("c2", "a1", "skipped", base.Add(-36*time.Hour)),
		rec("c3", "a1", "placed", base),
	}))

	n, err := s.PurgeOlderThan(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.ListByAgent(ctx, "a1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].CycleID)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
