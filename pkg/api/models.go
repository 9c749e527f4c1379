package api

import "time"

// Wire types mirroring the backend's JSON. Every fetch yields a fresh object
// graph that fully replaces whatever the previous snapshot rendered; nothing
// here is patched incrementally.

type Position struct {
	Ticker        string  `json:"ticker"`
	Quantity      float64 `json:"quantity"`
	AvgCost       float64 `json:"avg_cost"`
	CurrentPrice  float64 `json:"current_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// MarketValue uses the average cost when the server has no current quote yet.
func (p Position) MarketValue() float64 {
	price := p.CurrentPrice
	if price == 0 {
		price = p.AvgCost
	}
	return p.Quantity * price
}

type Portfolio struct {
	TotalEquity float64    `json:"total_equity"`
	CashBalance float64    `json:"cash_balance"`
	Positions   []Position `json:"positions"`
}

type AgentSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	OwnerUsername string     `json:"owner_username"`
	Portfolio     *Portfolio `json:"portfolio"`
}

type TradeAction struct {
	Action   string  `json:"action"`
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

type Decision struct {
	Thoughts string        `json:"thoughts"`
	Trades   []TradeAction `json:"trades"`
}

type AuditLog struct {
	Timestamp time.Time `json:"timestamp"`
	Response  Decision  `json:"response"`
}

type Trade struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	Ticker      string    `json:"ticker"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Reasoning   string    `json:"reasoning"`
	PnLRealized float64   `json:"pnl_realized"`
}

type AgentDetail struct {
	AgentSummary
	AuditLogs []AuditLog `json:"audit_logs"`
	Trades    []Trade    `json:"trades"`
}

type UserProfile struct {
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	AvatarID       int            `json:"avatar_id"`
	LinkedinHandle string         `json:"linkedin_handle"`
	TwitterHandle  string         `json:"twitter_handle"`
	Agents         []AgentSummary `json:"agents,omitempty"`
}

// ProfileUpdate is a partial patch: only non-nil fields are sent, so a patch
// carrying just the avatar leaves every other field untouched server-side.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	LinkedinHandle *string `json:"linkedin_handle,omitempty"`
	TwitterHandle  *string `json:"twitter_handle,omitempty"`
	AvatarID       *int    `json:"avatar_id,omitempty"`
}

type CreateAgentRequest struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Persona  string `json:"persona"`
}
