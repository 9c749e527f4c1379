package view

import (
	"strconv"
	"strings"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/config"
)

// DrawerState tracks a drawer's async lifecycle. A drawer opens in Loading
// and must always reach Loaded, NotFound, or Failed — never stuck loading.
type DrawerState int

const (
	DrawerLoading DrawerState = iota
	DrawerLoaded
	DrawerNotFound
	DrawerFailed
)

const (
	DrawerLoadingText  = "Loading..."
	DrawerNotFoundText = "Not found."
	DrawerFailedText   = "Could not load. Check your connection and try again."
)

// --- Portfolio drawer ---

type DrawerPosition struct {
	Ticker   string
	Quantity float64
	Value    string
}

type PortfolioDrawer struct {
	Title      string
	Subtitle   string
	Equity     string
	PnL        string
	Positive   bool
	Positions  []DrawerPosition // empty means the 100%-cash row
	Allocation []AllocationSegment
}

const DrawerCashOnly = "100% Cash Position"

func BuildPortfolioDrawer(d *api.AgentDetail) PortfolioDrawer {
	eq := Equity(d.AgentSummary)
	vm := PortfolioDrawer{
		Title:    d.Name,
		Subtitle: Owner(d.AgentSummary) + "'s Allocation",
		Equity:   FormatMoney(eq, 0),
		PnL:      FormatDelta(eq, 0),
		Positive: eq >= config.Baseline,
	}
	if d.Portfolio == nil {
		return vm
	}
	for _, pos := range d.Portfolio.Positions {
		vm.Positions = append(vm.Positions, DrawerPosition{
			Ticker:   pos.Ticker,
			Quantity: pos.Quantity,
			Value:    FormatMoney(pos.MarketValue(), 0),
		})
	}
	vm.Allocation = buildAllocation(d.Portfolio)
	return vm
}

// --- Public profile drawer ---

type ProfileAgentRow struct {
	Name     string
	Provider string
	PnL      string
	Positive bool
}

type PublicProfile struct {
	Username    string // "@handle"
	DisplayName string
	AvatarURL   string
	Linkedin    string // empty = hidden
	Twitter     string // empty = hidden
	Agents      []ProfileAgentRow
}

const PublicAgentsEmptyState = "No Active Agents"

func BuildPublicProfile(u *api.UserProfile, avatarTemplate string) PublicProfile {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = "Sentient Trader"
	}

	seed := u.Username
	if u.AvatarID != 0 {
		seed = strconv.Itoa(u.AvatarID)
	}

	vm := PublicProfile{
		Username:    "@" + u.Username,
		DisplayName: name,
		AvatarURL:   AvatarURL(avatarTemplate, seed),
		Linkedin:    u.LinkedinHandle,
		Twitter:     normalizeTwitter(u.TwitterHandle),
	}
	for _, a := range u.Agents {
		eq := Equity(a)
		vm.Agents = append(vm.Agents, ProfileAgentRow{
			Name:     a.Name,
			Provider: strings.ToUpper(a.Provider),
			PnL:      FormatDelta(eq, 0),
			Positive: eq >= config.Baseline,
		})
	}
	return vm
}

// normalizeTwitter accepts either a full URL or a bare @handle.
func normalizeTwitter(handle string) string {
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "http") {
		return handle
	}
	return "https://twitter.com/" + strings.TrimPrefix(handle, "@")
}
