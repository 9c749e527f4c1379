// Package api is the remote gateway: one method per backend capability,
// bearer credentials attached automatically, HTTP-level failures reported
// separately from transport failures so callers can decide between quiet
// retry (polling) and surfacing to the user (form submits).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Credentials is the slice of the session the gateway needs: read the token
// if one exists, and drop the session when the server says it is invalid.
type Credentials interface {
	Token() (string, bool)
	Clear()
}

// APIError is an HTTP-level failure: the server answered, and the answer was
// not a success. Transport failures (no response at all) are returned as
// ordinary wrapped errors instead.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Detail)
}

// IsNetworkError reports whether err is a transport failure rather than an
// HTTP status. Pollers retry these silently; forms surface them.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ae *APIError
	return !errors.As(err, &ae)
}

type Client struct {
	base  string
	http  *http.Client
	creds Credentials
}

func NewClient(baseURL string, timeout time.Duration, creds Credentials) *Client {
	return &Client{
		base:  baseURL,
		http:  &http.Client{Timeout: timeout},
		creds: creds,
	}
}

// ListPublicAgents returns the global leaderboard snapshot. Works without
// authentication.
func (c *Client) ListPublicAgents(ctx context.Context) ([]AgentSummary, error) {
	var agents []AgentSummary
	if err := c.do(ctx, http.MethodGet, "/agents/", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// ListMyAgents returns the agents owned by the authenticated user.
func (c *Client) ListMyAgents(ctx context.Context) ([]AgentSummary, error) {
	var agents []AgentSummary
	if err := c.do(ctx, http.MethodGet, "/agents/me", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *Client) GetAgent(ctx context.Context, id string) (*AgentDetail, error) {
	var agent AgentDetail
	if err := c.do(ctx, http.MethodGet, "/agents/"+id, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) GetMe(ctx context.Context) (*UserProfile, error) {
	var user UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PatchMe applies a partial profile update and returns the updated profile.
func (c *Client) PatchMe(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	var user UserProfile
	if err := c.do(ctx, http.MethodPatch, "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetPublicProfile(ctx context.Context, username string) (*UserProfile, error) {
	var user UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/"+username+"/public", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateAgent(ctx context.Context, name, provider, persona string) (*AgentSummary, error) {
	req := CreateAgentRequest{Name: name, Provider: provider, Persona: persona}
	var agent AgentSummary
	if err := c.do(ctx, http.MethodPost, "/agents/", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// TriggerMarketCycle asks the backend to run one trading round. Admin-only;
// non-admins get a 403 which propagates to the caller.
func (c *Client) TriggerMarketCycle(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/market/cycle", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Calls that require auth are attempted even without a token: the server
	// is authoritative on authorization, not this client.
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The token is definitively invalid; drop the session before the
		// caller ever sees the error.
		log.Warn().Str("path", path).Msg("401 from server, clearing session")
		c.creds.Clear()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(resp)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// errorDetail pulls the backend's {"detail": "..."} message when present so
// the UI can show the server's own words, e.g. "name taken".
func errorDetail(resp *http.Response) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return http.StatusText(resp.StatusCode)
}
