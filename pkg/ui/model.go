// Package ui is the terminal front-end: a Bubble Tea program that routes
// between the four top-level views, applies poller snapshots, and hosts the
// two slide-in drawers plus the create-agent and profile forms. All
// projection logic (sorting, formatting, empty states) lives in pkg/view;
// this package only translates view-models into terminal output.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/config"
	"github.com/arena-dashboard/pkg/session"
	"github.com/arena-dashboard/pkg/view"
)

// Gateway is the slice of the remote client the UI needs. Kept as an
// interface so router and form behavior is testable without a server.
type Gateway interface {
	ListPublicAgents(ctx context.Context) ([]api.AgentSummary, error)
	ListMyAgents(ctx context.Context) ([]api.AgentSummary, error)
	GetAgent(ctx context.Context, id string) (*api.AgentDetail, error)
	GetMe(ctx context.Context) (*api.UserProfile, error)
	PatchMe(ctx context.Context, update api.ProfileUpdate) (*api.UserProfile, error)
	GetPublicProfile(ctx context.Context, username string) (*api.UserProfile, error)
	CreateAgent(ctx context.Context, name, provider, persona string) (*api.AgentSummary, error)
	TriggerMarketCycle(ctx context.Context) error
}

// Refresher is the poller surface the UI drives on focus changes.
type Refresher interface {
	Pause()
	Resume(ctx context.Context)
}

// TermsStore persists the terms-accepted preference.
type TermsStore interface {
	TermsAccepted() bool
	SetTermsAccepted() error
}

// --- View router states ---

type viewID string

const (
	viewLeaderboard viewID = "leaderboard"
	viewDashboard   viewID = "dashboard"
	viewMyAgents    viewID = "my-agents"
	viewProfile     viewID = "profile"
)

// viewTitles is the static title/subtitle lookup the header renders from.
var viewTitles = map[viewID][2]string{
	viewDashboard:   {"Dashboard", "Institutional Grade AI Trading"},
	viewLeaderboard: {"Leaderboard", "Global Alpha Rankings"},
	viewMyAgents:    {"My Portfolio", "Manage your agents"},
	viewProfile:     {"Settings", "Customize your identity"},
}

// --- Drawers ---

type portfolioDrawer struct {
	open    bool
	agentID string
	state   view.DrawerState
	vm      view.PortfolioDrawer
}

type profileDrawer struct {
	open     bool
	username string
	state    view.DrawerState
	vm       view.PublicProfile
}

// --- Forms ---

const (
	createFieldName = iota
	createFieldPersona
	createFieldCount
)

type createForm struct {
	open   bool
	inputs [createFieldCount]textinput.Model
	focus  int
}

const (
	profileFieldFirst = iota
	profileFieldLast
	profileFieldLinkedin
	profileFieldTwitter
	profileFieldCount
)

type profileForm struct {
	inputs        [profileFieldCount]textinput.Model
	focus         int
	pendingAvatar int // 0 = unchanged
}

const defaultPersona = "You are a rational profit-maximizing trader."

// maxAvatarSeed bounds the avatar picker, matching the web client's grid.
const maxAvatarSeed = 20

type Model struct {
	cfg   *config.Config
	sess  *session.Session
	gw    Gateway
	pol   Refresher
	terms TermsStore

	activeView viewID
	cursor     int

	// Last-known-good snapshots. Each apply fully replaces the previous one.
	agents    []api.AgentSummary
	myAgents  []api.AgentSummary
	dash      view.Dashboard
	hasDash   bool

	portfolio portfolioDrawer
	public    profileDrawer
	create    createForm
	profile   profileForm

	termsOpen bool
	notice    string

	width   int
	height  int
	help    help.Model
	spinner spinner.Model
}

func NewModel(cfg *config.Config, sess *session.Session, gw Gateway, pol Refresher, terms TermsStore) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		cfg:   cfg,
		sess:  sess,
		gw:    gw,
		pol:   pol,
		terms: terms,
		// The public landing view comes first, always; stored preferences
		// never override it.
		activeView: viewLeaderboard,
		help:       help.New(),
		spinner:    sp,
	}

	for i := range m.create.inputs {
		m.create.inputs[i] = textinput.New()
	}
	m.create.inputs[createFieldName].Placeholder = "Agent designation"
	m.create.inputs[createFieldName].CharLimit = 64
	m.create.inputs[createFieldPersona].Placeholder = "Persona"
	m.create.inputs[createFieldPersona].CharLimit = 256

	for i := range m.profile.inputs {
		m.profile.inputs[i] = textinput.New()
	}
	m.profile.inputs[profileFieldFirst].Placeholder = "First name"
	m.profile.inputs[profileFieldLast].Placeholder = "Last name"
	m.profile.inputs[profileFieldLinkedin].Placeholder = "LinkedIn URL"
	m.profile.inputs[profileFieldTwitter].Placeholder = "Twitter handle"

	// Guests who never accepted the terms are gated before anything else.
	if !sess.IsAuthenticated() && !terms.TermsAccepted() {
		m.termsOpen = true
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchAgentsCmd()}
	if m.sess.IsAuthenticated() {
		cmds = append(cmds, m.fetchMeCmd(), m.fetchMyAgentsCmd())
	}
	return tea.Batch(cmds...)
}

// ActiveView exposes the router state for tests and the status bar.
func (m Model) ActiveView() string { return string(m.activeView) }
