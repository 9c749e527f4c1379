package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	token   string
	cleared bool
}

func (f *fakeCreds) Token() (string, bool) { return f.token, f.token != "" }
func (f *fakeCreds) Clear()                { f.token, f.cleared = "", true }

func newTestClient(t *testing.T, creds *fakeCreds, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, creds)
}

func TestBearerAttachedWhenPresent(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, &fakeCreds{token: "jwt-123"}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]AgentSummary{})
	})

	_, err := c.ListPublicAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-123", gotAuth)
}

func TestUnauthenticatedCallStillAttempted(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not allowed"})
	})

	// The server decides authorization; the client must not short-circuit.
	_, err := c.ListMyAgents(context.Background())
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, "not allowed", ae.Detail)
	assert.Empty(t, gotAuth)
}

func Test401ClearsSession(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	c := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetMe(context.Background())
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.True(t, creds.cleared, "401 must clear the session before returning")
}

func Test403DoesNotClearSession(t *testing.T) {
	creds := &fakeCreds{token: "valid-but-not-admin"}
	c := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.TriggerMarketCycle(context.Background())
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.False(t, creds.cleared, "403 means the token is fine, keep it")
}

func TestCreateAgentSurfacesDetail(t *testing.T) {
	c := newTestClient(t, &fakeCreds{token: "jwt"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "name taken"})
	})

	_, err := c.CreateAgent(context.Background(), "Bot1", "gemini", "persona")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "name taken", ae.Detail)
	assert.False(t, IsNetworkError(err))
}

func TestNetworkErrorIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := NewClient(srv.URL, time.Second, &fakeCreds{})

	_, err := c.ListPublicAgents(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestPatchMeSendsOnlySuppliedFields(t *testing.T) {
	var body map[string]interface{}
	c := newTestClient(t, &fakeCreds{token: "jwt"}, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		json.NewEncoder(w).Encode(UserProfile{Username: "alice", AvatarID: 7})
	})

	avatar := 7
	user, err := c.PatchMe(context.Background(), ProfileUpdate{AvatarID: &avatar})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"avatar_id": float64(7)}, body,
		"avatar-only patch must not carry other profile fields")
	assert.Equal(t, 7, user.AvatarID)
}

func TestGetAgentDecodesDetail(t *testing.T) {
	c := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agents/X", r.URL.Path)
		json.NewEncoder(w).Encode(AgentDetail{
			AgentSummary: AgentSummary{
				ID: "X", Name: "Bot1", Provider: "gemini",
				Portfolio: &Portfolio{
					TotalEquity: 12000, CashBalance: 4000,
					Positions: []Position{{Ticker: "AAPL", Quantity: 10, AvgCost: 150, CurrentPrice: 180}},
				},
			},
		})
	})

	agent, err := c.GetAgent(context.Background(), "X")
	require.NoError(t, err)
	require.NotNil(t, agent.Portfolio)
	assert.Equal(t, 12000.0, agent.Portfolio.TotalEquity)
	require.Len(t, agent.Portfolio.Positions, 1)
	assert.Equal(t, 1800.0, agent.Portfolio.Positions[0].MarketValue())
}

func TestMarketValueFallsBackToAvgCost(t *testing.T) {
	p := Position{Ticker: "TSLA", Quantity: 2, AvgCost: 250}
	assert.Equal(t, 500.0, p.MarketValue())
}
