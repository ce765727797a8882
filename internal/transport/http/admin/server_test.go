package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"autobid/internal/condition"
	"autobid/internal/condition/handlers"
	"autobid/internal/store/gormstore"
	"autobid/internal/store/outcomelog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplates = `
conditions:
  max_price:
    schema:
      type: number
      exclusiveMinimum: 0
  expr:
    schema:
      type: string
      minLength: 1
`

func newTestServer(t *testing.T) (*Server, *outcomelog.Store) {
	t.Helper()
	dir := t.TempDir()

	agents, err := gormstore.NewAgentStore(filepath.Join(dir, "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { agents.Close() })

	outcomes, err := outcomelog.New(filepath.Join(dir, "outcomes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { outcomes.Close() })

	tplPath := filepath.Join(dir, "conditions.yaml")
	require.NoError(t, os.WriteFile(tplPath, []byte(testTemplates), 0o644))
	templates, err := condition.NewTemplateRegistry(tplPath)
	require.NoError(t, err)

	registry := condition.NewRegistry()
	require.NoError(t, handlers.RegisterDefaults(registry))

	return NewServer("test", agents, outcomes, templates, registry), outcomes
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func validCreate() map[string]any {
	return map[string]any{
		"auction_id":       "auc-1",
		"user_id":          "user-1",
		"max_bid_amount":   "100",
		"increment_amount": "5",
		"interval_minutes": 5,
		"conditions":       map[string]any{"max_price": 120.0},
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListConditions(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/conditions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conditions []string `json:"conditions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Conditions, "max_price")
	assert.Contains(t, resp.Conditions, "expr")
}

func TestCreateAndGetAgent(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/agents", validCreate())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created agentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive, "new agents start active")
	require.NotNil(t, created.MaxBidAmount)
	assert.Equal(t, "100", *created.MaxBidAmount)

	w = doJSON(t, s, http.MethodGet, "/api/v1/agents/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got agentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "auc-1", got.AuctionID)
	assert.Equal(t, map[string]any{"max_price": 120.0}, got.Conditions)
}

func TestCreateAgentValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"unknown condition", func(m map[string]any) {
			m["conditions"] = map[string]any{"mystery": 1.0}
		}},
		{"schema violation", func(m map[string]any) {
			m["conditions"] = map[string]any{"max_price": -5.0}
		}},
		{"bad decimal", func(m map[string]any) {
			m["max_bid_amount"] = "lots"
		}},
		{"negative max bid", func(m map[string]any) {
			m["max_bid_amount"] = "-10"
		}},
		{"zero increment", func(m map[string]any) {
			m["increment_amount"] = "0"
		}},
		{"missing auction id", func(m map[string]any) {
			m["auction_id"] = "  "
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCreate()
			tt.mutate(body)
			w := doJSON(t, s, http.MethodPost, "/api/v1/agents", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestUpdateAgentPreservesEngineState(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/agents", validCreate())
	require.Equal(t, http.StatusCreated, w.Code)
	var created agentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Deactivate, then update the config; the edit must not resurrect it.
	w = doJSON(t, s, http.MethodDelete, "/api/v1/agents/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	update := validCreate()
	update["max_bid_amount"] = "250"
	w = doJSON(t, s, http.MethodPut, "/api/v1/agents/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated agentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.MaxBidAmount)
	assert.Equal(t, "250", *updated.MaxBidAmount)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestAgentNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/agents/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/v1/agents/nope", validCreate())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/agents/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAgents(t *testing.T) {
	s, _ := newTestServer(t)

	for range 2 {
		w := doJSON(t, s, http.MethodPost, "/api/v1/agents", validCreate())
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/agents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Agents []agentResponse `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Agents, 2)
}

func TestOutcomeEndpoints(t *testing.T) {
	s, outcomes := newTestServer(t)
	ctx := t.Context()

	require.NoError(t, outcomes.Insert(ctx, []outcomelog.Record{
		{CycleID: "c1", AgentID: "a1", AuctionID: "auc-1", Kind: "placed", Amount: "95", BidPlaced: true, CreatedAt: time.Now()},
		{CycleID: "c1", AgentID: "a2", AuctionID: "auc-2", Kind: "skipped", Reason: "AutoBid is not active", CreatedAt: time.Now()},
	}))

	w := doJSON(t, s, http.MethodGet, "/api/v1/agents/a1/outcomes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byAgent struct {
		Outcomes []outcomelog.Record `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &byAgent))
	require.Len(t, byAgent.Outcomes, 1)
	assert.Equal(t, "placed", byAgent.Outcomes[0].Kind)

	w = doJSON(t, s, http.MethodGet, "/api/v1/outcomes?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recent struct {
		Outcomes []outcomelog.Record `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	assert.Len(t, recent.Outcomes, 2)
}
