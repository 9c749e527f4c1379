package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arena-dashboard/pkg/api"
)

// --- Messages ---

// AgentListMsg carries a fresh public leaderboard snapshot.
type AgentListMsg struct {
	Agents []api.AgentSummary
}

// AgentDetailMsg carries a fresh detail snapshot for the dashboard. The
// target id is checked at apply time: if the user has moved on to another
// agent the update is dropped silently.
type AgentDetailMsg struct {
	ID     string
	Detail *api.AgentDetail
}

// PollErrMsg reports a background refresh failure. Never surfaced as a
// dialog; the view keeps its last-known-good state.
type PollErrMsg struct {
	Kind string
	Err  error
}

type myAgentsMsg struct {
	agents []api.AgentSummary
	err    error
}

type meLoadedMsg struct {
	user *api.UserProfile
	err  error
}

// drawerAgentMsg resolves the portfolio drawer's fetch.
type drawerAgentMsg struct {
	id     string
	detail *api.AgentDetail
	err    error
}

// publicProfileMsg resolves the public-profile drawer's fetch.
type publicProfileMsg struct {
	username string
	profile  *api.UserProfile
	err      error
}

type agentCreatedMsg struct {
	agent *api.AgentSummary
	err   error
}

type profileSavedMsg struct {
	user *api.UserProfile
	err  error
}

type marketCycleMsg struct {
	err error
}

// --- Poller relay ---

// Relay adapts the poller's sink to Bubble Tea messages. It is constructed
// before the program exists, so the send function is attached late; results
// arriving before then are dropped (there is no UI to show them yet).
type Relay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewRelay() *Relay {
	return &Relay{}
}

func (r *Relay) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *Relay) post(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (r *Relay) ApplyAgentList(agents []api.AgentSummary) {
	r.post(AgentListMsg{Agents: agents})
}

func (r *Relay) ApplyAgentDetail(id string, detail *api.AgentDetail) {
	r.post(AgentDetailMsg{ID: id, Detail: detail})
}

func (r *Relay) PollFailed(kind string, err error) {
	r.post(PollErrMsg{Kind: kind, Err: err})
}
