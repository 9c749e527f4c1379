package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Leaderboard key.Binding
	Dashboard   key.Binding
	MyAgents    key.Binding
	Profile     key.Binding

	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Esc     key.Binding
	Refresh key.Binding

	Portfolio    key.Binding
	OwnerProfile key.Binding
	NewAgent     key.Binding
	MarketCycle  key.Binding
	ClearContext key.Binding
	Logout       key.Binding

	Quit key.Binding
}

var keys = keyMap{
	Leaderboard: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "leaderboard")),
	Dashboard:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
	MyAgents:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my agents")),
	Profile:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),

	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Esc:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

	Portfolio:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view portfolio")),
	OwnerProfile: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "owner profile")),
	NewAgent:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new agent")),
	MarketCycle:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "run cycle")),
	ClearContext: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear context")),
	Logout:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),

	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Leaderboard, k.Dashboard, k.MyAgents, k.Profile, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Leaderboard, k.Dashboard, k.MyAgents, k.Profile},
		{k.Up, k.Down, k.Enter, k.Esc},
		{k.Portfolio, k.OwnerProfile, k.NewAgent, k.MarketCycle},
		{k.ClearContext, k.Refresh, k.Logout, k.Quit},
	}
}
