// Package view turns server snapshots into plain view-models. Everything
// here is a pure function; the terminal adapter in pkg/ui decides how the
// models end up on screen. Sorting, empty-state policy, and the 10k-baseline
// formatting live here so they can be tested without a UI harness.
package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/config"
)

// Equity reads an agent's total equity, defaulting to the baseline when the
// portfolio has not materialized yet (display only).
func Equity(a api.AgentSummary) float64 {
	if a.Portfolio == nil {
		return config.Baseline
	}
	return a.Portfolio.TotalEquity
}

// Owner falls back to the anonymous system handle, matching the server's
// agents that belong to nobody.
func Owner(a api.AgentSummary) string {
	if a.OwnerUsername == "" {
		return "AlphaBot"
	}
	return a.OwnerUsername
}

// rankByEquity sorts descending by equity. The sort is stable so agents with
// equal equity keep their input order; sidebar and leaderboard share this and
// therefore always agree on relative order.
func rankByEquity(agents []api.AgentSummary) []api.AgentSummary {
	ranked := make([]api.AgentSummary, len(agents))
	copy(ranked, agents)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Equity(ranked[i]) > Equity(ranked[j])
	})
	return ranked
}

// --- Sidebar ranking ---

type RankingEntry struct {
	Rank     int
	AgentID  string
	Name     string
	PnL      string
	Positive bool
	Selected bool
}

// BuildRanking is the sidebar projection: re-sorted from scratch on every
// snapshot, truncated to the top 10.
func BuildRanking(agents []api.AgentSummary, selectedID string) []RankingEntry {
	ranked := rankByEquity(agents)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	entries := make([]RankingEntry, 0, len(ranked))
	for i, a := range ranked {
		eq := Equity(a)
		entries = append(entries, RankingEntry{
			Rank:     i + 1,
			AgentID:  a.ID,
			Name:     a.Name,
			PnL:      FormatDelta(eq, 0),
			Positive: eq >= config.Baseline,
			Selected: a.ID == selectedID,
		})
	}
	return entries
}

// --- Global leaderboard ---

type LeaderboardRow struct {
	Rank     int
	AgentID  string
	Name     string
	Owner    string
	Equity   string
	Change   string
	Positive bool
}

// BuildLeaderboard is the full-table projection: same order as the sidebar,
// not truncated.
func BuildLeaderboard(agents []api.AgentSummary) []LeaderboardRow {
	ranked := rankByEquity(agents)
	rows := make([]LeaderboardRow, 0, len(ranked))
	for i, a := range ranked {
		eq := Equity(a)
		rows = append(rows, LeaderboardRow{
			Rank:     i + 1,
			AgentID:  a.ID,
			Name:     a.Name,
			Owner:    Owner(a),
			Equity:   FormatMoney(eq, 0),
			Change:   FormatPct(eq),
			Positive: eq >= config.Baseline,
		})
	}
	return rows
}

// --- Dashboard ---

type PositionRow struct {
	Ticker       string
	Quantity     float64
	AvgCost      string
	CurrentPrice string
	PnL          string
	Positive     bool
}

type AllocationSegment struct {
	Label string
	Value float64
	Share float64 // 0..1 of total equity
}

type LogEntry struct {
	Time     string
	Thoughts string
	Decision string
}

type TradeEntry struct {
	Time     string
	Action   string
	IsBuy    bool
	Summary  string
	Reason   string
	Realized string // empty when no realized PnL
}

const (
	CashOnlyRow      = "No active positions. Agent is 100% Cash."
	LogsEmptyState   = "Waiting for agent activity..."
	TradesEmptyState = "No trades yet."
)

type Dashboard struct {
	AgentName   string
	Provider    string
	TotalEquity string
	CashBalance string
	PnL         string
	PnLPositive bool

	Positions  []PositionRow // empty means render CashOnlyRow
	Allocation []AllocationSegment
	Logs       []LogEntry
	Trades     []TradeEntry
}

// BuildDashboard projects a full agent detail. An absent portfolio means the
// snapshot is not ready to show: ok is false and the caller keeps whatever
// the dashboard showed before.
func BuildDashboard(d *api.AgentDetail) (Dashboard, bool) {
	if d == nil || d.Portfolio == nil {
		return Dashboard{}, false
	}
	p := d.Portfolio

	vm := Dashboard{
		AgentName:   d.Name,
		Provider:    "Powered by " + strings.ToUpper(d.Provider) + " | Strategy: Long/Short Equity",
		TotalEquity: FormatMoney(p.TotalEquity, 2),
		CashBalance: FormatMoney(p.CashBalance, 2),
		PnL:         FormatDelta(p.TotalEquity, 2),
		PnLPositive: p.TotalEquity >= config.Baseline,
	}

	// Positions stay in server order.
	for _, pos := range p.Positions {
		price := pos.CurrentPrice
		if price == 0 {
			price = pos.AvgCost
		}
		vm.Positions = append(vm.Positions, PositionRow{
			Ticker:       pos.Ticker,
			Quantity:     pos.Quantity,
			AvgCost:      FormatMoney(pos.AvgCost, 2),
			CurrentPrice: FormatMoney(price, 2),
			PnL:          signedMoney(pos.UnrealizedPnL),
			Positive:     pos.UnrealizedPnL >= 0,
		})
	}

	vm.Allocation = buildAllocation(p)
	vm.Logs = buildLogs(d.AuditLogs)
	vm.Trades = buildTrades(d.Trades)
	return vm, true
}

// buildAllocation is the terminal stand-in for a doughnut chart: cash plus one
// segment per position, with each segment's share of total equity.
func buildAllocation(p *api.Portfolio) []AllocationSegment {
	total := p.CashBalance
	for _, pos := range p.Positions {
		total += pos.MarketValue()
	}
	if total <= 0 {
		return nil
	}
	segments := []AllocationSegment{{Label: "Cash", Value: p.CashBalance, Share: p.CashBalance / total}}
	for _, pos := range p.Positions {
		mv := pos.MarketValue()
		segments = append(segments, AllocationSegment{Label: pos.Ticker, Value: mv, Share: mv / total})
	}
	return segments
}

// buildLogs sorts newest-first at render time; the server order is not
// trusted.
func buildLogs(logs []api.AuditLog) []LogEntry {
	sorted := make([]api.AuditLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	entries := make([]LogEntry, 0, len(sorted))
	for _, l := range sorted {
		thoughts := l.Response.Thoughts
		if thoughts == "" {
			thoughts = "Analyzing market structure..."
		}
		entries = append(entries, LogEntry{
			Time:     l.Timestamp.Format("15:04:05"),
			Thoughts: thoughts,
			Decision: decisionLine(l.Response.Trades),
		})
	}
	return entries
}

func decisionLine(actions []api.TradeAction) string {
	if len(actions) == 0 {
		return "HOLD"
	}
	parts := make([]string, 0, len(actions))
	for _, t := range actions {
		parts = append(parts, strings.TrimSpace(strings.Join([]string{t.Action, trimFloat(t.Quantity), t.Ticker}, " ")))
	}
	return strings.Join(parts, ", ")
}

func buildTrades(trades []api.Trade) []TradeEntry {
	sorted := make([]api.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	entries := make([]TradeEntry, 0, len(sorted))
	for _, t := range sorted {
		entry := TradeEntry{
			Time:    t.Timestamp.Format("15:04"),
			Action:  t.Action,
			IsBuy:   t.Action == "BUY",
			Summary: trimFloat(t.Quantity) + " " + t.Ticker + " @ " + FormatMoney(t.Price, 2),
			Reason:  truncate(t.Reasoning, 100),
		}
		if t.PnLRealized != 0 {
			entry.Realized = signedMoney(t.PnLRealized)
		}
		entries = append(entries, entry)
	}
	return entries
}

// --- My agents grid ---

type AgentCard struct {
	AgentID  string
	Name     string
	Provider string
	Equity   string
	PnL      string
	Positive bool
}

const MyAgentsEmptyState = "You haven't launched any agents yet. Launch your first agent to start trading."

func BuildAgentCards(agents []api.AgentSummary) []AgentCard {
	cards := make([]AgentCard, 0, len(agents))
	for _, a := range agents {
		eq := Equity(a)
		cards = append(cards, AgentCard{
			AgentID:  a.ID,
			Name:     a.Name,
			Provider: strings.ToUpper(a.Provider),
			Equity:   FormatMoney(eq, 0),
			PnL:      FormatDelta(eq, 0),
			Positive: eq >= config.Baseline,
		})
	}
	return cards
}

// helpers

func signedMoney(v float64) string {
	if v >= 0 {
		return "+" + FormatMoney(v, 2)
	}
	return FormatMoney(v, 2)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Timestamp is exported for tests that need the render-time clock format.
func Timestamp(t time.Time) string { return t.Format("15:04:05") }
