package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/config"
	"github.com/arena-dashboard/pkg/session"
	"github.com/arena-dashboard/pkg/view"
)

// --- Fakes ---

type memTokens struct {
	token string
}

func (m *memTokens) Token() (string, bool)   { return m.token, m.token != "" }
func (m *memTokens) SetToken(t string) error { m.token = t; return nil }
func (m *memTokens) ClearToken() error       { m.token = ""; return nil }

type memTerms struct {
	accepted bool
}

func (m *memTerms) TermsAccepted() bool     { return m.accepted }
func (m *memTerms) SetTermsAccepted() error { m.accepted = true; return nil }

type fakeRefresher struct {
	paused, resumed int
}

func (f *fakeRefresher) Pause()                 { f.paused++ }
func (f *fakeRefresher) Resume(context.Context) { f.resumed++ }

type fakeGateway struct {
	agents      []api.AgentSummary
	myAgents    []api.AgentSummary
	createCalls int
	createErr   error
}

func (f *fakeGateway) ListPublicAgents(context.Context) ([]api.AgentSummary, error) {
	return f.agents, nil
}

func (f *fakeGateway) ListMyAgents(context.Context) ([]api.AgentSummary, error) {
	return f.myAgents, nil
}

func (f *fakeGateway) GetAgent(_ context.Context, id string) (*api.AgentDetail, error) {
	return &api.AgentDetail{AgentSummary: api.AgentSummary{ID: id, Name: "agent-" + id}}, nil
}

func (f *fakeGateway) GetMe(context.Context) (*api.UserProfile, error) {
	return &api.UserProfile{Username: "quant"}, nil
}

func (f *fakeGateway) PatchMe(_ context.Context, _ api.ProfileUpdate) (*api.UserProfile, error) {
	return &api.UserProfile{Username: "quant"}, nil
}

func (f *fakeGateway) GetPublicProfile(_ context.Context, username string) (*api.UserProfile, error) {
	return &api.UserProfile{Username: username}, nil
}

func (f *fakeGateway) CreateAgent(_ context.Context, name, provider, persona string) (*api.AgentSummary, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.AgentSummary{ID: "new", Name: name, Provider: provider}, nil
}

func (f *fakeGateway) TriggerMarketCycle(context.Context) error { return nil }

func testAgents() []api.AgentSummary {
	return []api.AgentSummary{
		{ID: "a1", Name: "Momentum", OwnerUsername: "alice", Portfolio: &api.Portfolio{TotalEquity: 12000}},
		{ID: "a2", Name: "Contrarian", OwnerUsername: "bob", Portfolio: &api.Portfolio{TotalEquity: 9500}},
		{ID: "a3", Name: "Sleeper"},
	}
}

func newTestModel(t *testing.T, authed bool) (Model, *fakeGateway, *fakeRefresher) {
	t.Helper()
	tokens := &memTokens{}
	if authed {
		tokens.token = "tok"
	}
	sess := session.New(tokens)
	gw := &fakeGateway{agents: testAgents()}
	ref := &fakeRefresher{}
	cfg := &config.Config{AvatarURLTemplate: "https://avatars.invalid/%s.svg"}
	m := NewModel(cfg, sess, gw, ref, &memTerms{accepted: true})
	m.agents = gw.agents
	if authed {
		sess.SetCurrentUser(&api.UserProfile{Username: "quant"})
	}
	return m, gw, ref
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// --- Startup and routing ---

func TestGuestStartup(t *testing.T) {
	tokens := &memTokens{}
	sess := session.New(tokens)
	cfg := &config.Config{}
	m := NewModel(cfg, sess, &fakeGateway{}, &fakeRefresher{}, &memTerms{})

	t.Run("lands on the leaderboard", func(t *testing.T) {
		assert.Equal(t, "leaderboard", m.ActiveView())
	})

	t.Run("terms gate shown before anything else", func(t *testing.T) {
		assert.True(t, m.termsOpen)
		assert.Contains(t, m.View(), "Terms of Engagement")
	})

	t.Run("accepting the terms persists and unblocks", func(t *testing.T) {
		terms := &memTerms{}
		g := NewModel(cfg, sess, &fakeGateway{}, &fakeRefresher{}, terms)
		g, _ = update(t, g, tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, g.termsOpen)
		assert.True(t, terms.accepted)
	})

	t.Run("protected nav hidden, sign-in hint shown", func(t *testing.T) {
		g, _, _ := newTestModel(t, false)
		out := g.View()
		assert.Contains(t, out, "Sign In / Register")
		assert.NotContains(t, out, "My Agents")
	})

	t.Run("already-accepted terms are not re-asked", func(t *testing.T) {
		g := NewModel(cfg, sess, &fakeGateway{}, &fakeRefresher{}, &memTerms{accepted: true})
		assert.False(t, g.termsOpen)
	})
}

func TestNavigation(t *testing.T) {
	t.Run("unknown target is a no-op", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m, cmd := m.navigate(viewID("settings-v2"))
		assert.Equal(t, "leaderboard", m.ActiveView())
		assert.Nil(t, cmd)
	})

	t.Run("guest cannot reach protected views", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('m'))
		assert.Equal(t, "leaderboard", m.ActiveView())
		assert.Equal(t, "Sign in required.", m.notice)
	})

	t.Run("each view fires exactly its own load", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)

		m, cmd := m.navigate(viewMyAgents)
		assert.Equal(t, "my-agents", m.ActiveView())
		assert.NotNil(t, cmd)

		m, cmd = m.navigate(viewDashboard)
		assert.Equal(t, "dashboard", m.ActiveView())
		assert.Nil(t, cmd, "dashboard renders from session context, no fetch")
	})

	t.Run("enter selects the ranked agent and opens the dashboard", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "dashboard", m.ActiveView())
		require.NotNil(t, cmd)
		id, ok := m.sess.SelectedAgent()
		require.True(t, ok)
		assert.Equal(t, "a1", id, "cursor 0 is the equity leader, not input order")
	})

	t.Run("logout drops session state and returns to the leaderboard", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m.sess.SetSelectedAgent("a1")
		m.hasDash = true
		m, _ = update(t, m, keyPress('L'))
		assert.Equal(t, "leaderboard", m.ActiveView())
		assert.False(t, m.sess.IsAuthenticated())
		assert.False(t, m.hasDash)
		_, ok := m.sess.SelectedAgent()
		assert.False(t, ok)
	})
}

// --- Snapshot application ---

func TestApplyAgentDetail(t *testing.T) {
	detail := &api.AgentDetail{
		AgentSummary: api.AgentSummary{
			ID: "a1", Name: "Momentum",
			Portfolio: &api.Portfolio{TotalEquity: 12000, CashBalance: 12000},
		},
	}

	t.Run("applies when the agent is still selected", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m.sess.SetSelectedAgent("a1")
		m, _ = update(t, m, AgentDetailMsg{ID: "a1", Detail: detail})
		assert.True(t, m.hasDash)
		assert.Equal(t, "Momentum", m.dash.AgentName)
	})

	t.Run("dropped after the user moved on", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m.sess.SetSelectedAgent("a2")
		m, _ = update(t, m, AgentDetailMsg{ID: "a1", Detail: detail})
		assert.False(t, m.hasDash)
	})

	t.Run("nil portfolio keeps the previous dashboard", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m.sess.SetSelectedAgent("a1")
		m, _ = update(t, m, AgentDetailMsg{ID: "a1", Detail: detail})
		bare := &api.AgentDetail{AgentSummary: api.AgentSummary{ID: "a1"}}
		m, _ = update(t, m, AgentDetailMsg{ID: "a1", Detail: bare})
		assert.True(t, m.hasDash)
		assert.Equal(t, "Momentum", m.dash.AgentName)
	})
}

func TestPollErrKeepsLastKnownGood(t *testing.T) {
	m, _, _ := newTestModel(t, false)
	before := len(m.agents)
	m, _ = update(t, m, PollErrMsg{Kind: "agent-list", Err: errors.New("boom")})
	assert.Len(t, m.agents, before)
	assert.Empty(t, m.notice)
}

// --- Drawers ---

func TestPortfolioDrawer(t *testing.T) {
	detail := &api.AgentDetail{
		AgentSummary: api.AgentSummary{
			ID: "a1", Name: "Momentum", OwnerUsername: "alice",
			Portfolio: &api.Portfolio{TotalEquity: 12000, CashBalance: 12000},
		},
	}

	t.Run("opens loading", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, cmd := update(t, m, keyPress('v'))
		require.NotNil(t, cmd)
		assert.True(t, m.portfolio.open)
		assert.Equal(t, view.DrawerLoading, m.portfolio.state)
		assert.Equal(t, "a1", m.portfolio.agentID)
	})

	t.Run("response for another agent is ignored", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('v'))
		m, _ = update(t, m, drawerAgentMsg{id: "a2", detail: detail})
		assert.Equal(t, view.DrawerLoading, m.portfolio.state)
	})

	t.Run("matching response loads", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('v'))
		m, _ = update(t, m, drawerAgentMsg{id: "a1", detail: detail})
		assert.Equal(t, view.DrawerLoaded, m.portfolio.state)
		assert.Equal(t, "alice's Allocation", m.portfolio.vm.Subtitle)
	})

	t.Run("missing agent vs transport failure", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('v'))
		m, _ = update(t, m, drawerAgentMsg{id: "a1", err: &api.APIError{Status: 404, Detail: "Agent not found"}})
		assert.Equal(t, view.DrawerNotFound, m.portfolio.state)

		m, _ = update(t, m, keyPress('v'))
		m, _ = update(t, m, drawerAgentMsg{id: "a1", err: errors.New("dial tcp: refused")})
		assert.Equal(t, view.DrawerFailed, m.portfolio.state)
	})

	t.Run("esc closes", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('v'))
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.portfolio.open)
	})
}

func TestPublicProfileDrawer(t *testing.T) {
	m, _, _ := newTestModel(t, false)
	m, cmd := update(t, m, keyPress('o'))
	require.NotNil(t, cmd)
	assert.True(t, m.public.open)
	assert.Equal(t, "alice", m.public.username)

	m, _ = update(t, m, publicProfileMsg{username: "bob", profile: &api.UserProfile{Username: "bob"}})
	assert.Equal(t, view.DrawerLoading, m.public.state, "late response for another profile stays pending")

	m, _ = update(t, m, publicProfileMsg{username: "alice", profile: &api.UserProfile{Username: "alice"}})
	assert.Equal(t, view.DrawerLoaded, m.public.state)
	assert.Equal(t, "@alice", m.public.vm.Username)
}

// --- Create form ---

func TestCreateAgentForm(t *testing.T) {
	t.Run("guest is refused", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		m, _ = update(t, m, keyPress('n'))
		assert.False(t, m.create.open)
		assert.Equal(t, "Sign in required.", m.notice)
	})

	t.Run("empty name never reaches the server", func(t *testing.T) {
		m, gw, _ := newTestModel(t, true)
		m, _ = update(t, m, keyPress('n'))
		require.True(t, m.create.open)
		m.create.inputs[createFieldName].SetValue("")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, 0, gw.createCalls)
		assert.Equal(t, "Agent designation is required.", m.notice)
		assert.True(t, m.create.open)
	})

	t.Run("server rejection keeps the modal open with the detail", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m, _ = update(t, m, keyPress('n'))
		m, cmd := update(t, m, agentCreatedMsg{err: &api.APIError{Status: 400, Detail: "Agent name already taken"}})
		assert.True(t, m.create.open)
		assert.Equal(t, "Error: Agent name already taken", m.notice)
		assert.Nil(t, cmd, "rejected create must not refresh the lists")
	})

	t.Run("success closes and refetches both lists", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		m, _ = update(t, m, keyPress('n'))
		m, cmd := update(t, m, agentCreatedMsg{agent: &api.AgentSummary{ID: "new"}})
		assert.False(t, m.create.open)
		assert.NotNil(t, cmd)
	})
}

// --- Profile and market cycle ---

func TestProfileUpdatePayload(t *testing.T) {
	m, _, _ := newTestModel(t, true)
	m.profile.inputs[profileFieldFirst].SetValue("Ada")
	m.profile.inputs[profileFieldLast].SetValue("Lovelace")

	t.Run("avatar omitted when untouched", func(t *testing.T) {
		u := m.profileUpdate()
		require.NotNil(t, u.FirstName)
		assert.Equal(t, "Ada", *u.FirstName)
		assert.Nil(t, u.AvatarID)
	})

	t.Run("avatar included once picked", func(t *testing.T) {
		m.profile.pendingAvatar = 7
		u := m.profileUpdate()
		require.NotNil(t, u.AvatarID)
		assert.Equal(t, 7, *u.AvatarID)
	})
}

func TestMarketCycleForbidden(t *testing.T) {
	m, _, _ := newTestModel(t, true)
	m, cmd := update(t, m, marketCycleMsg{err: &api.APIError{Status: 403, Detail: "forbidden"}})
	assert.Equal(t, "Admin privileges required.", m.notice)
	assert.Nil(t, cmd)
}

func TestMarketCycleSuccessSchedulesRefresh(t *testing.T) {
	m, _, _ := newTestModel(t, true)
	_, cmd := update(t, m, marketCycleMsg{})
	assert.NotNil(t, cmd)
}

// --- Focus handling ---

func TestFocusDrivesPoller(t *testing.T) {
	m, _, ref := newTestModel(t, false)
	m, _ = update(t, m, tea.BlurMsg{})
	assert.Equal(t, 1, ref.paused)
	_, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, 1, ref.resumed)
}
