package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/view"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.FocusMsg:
		if m.pol != nil {
			m.pol.Resume(context.Background())
		}
		return m, nil

	case tea.BlurMsg:
		if m.pol != nil {
			m.pol.Pause()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AgentListMsg:
		// Full replace; renderers re-sort from scratch on every snapshot.
		m.agents = msg.Agents
		return m, nil

	case AgentDetailMsg:
		return m.applyAgentDetail(msg), nil

	case PollErrMsg:
		// Background failures never interrupt: last-known-good stays up and
		// the next tick retries.
		return m, nil

	case myAgentsMsg:
		if msg.err == nil {
			m.myAgents = msg.agents
		}
		return m, nil

	case meLoadedMsg:
		if msg.err == nil {
			m.sess.SetCurrentUser(msg.user)
		}
		return m, nil

	case drawerAgentMsg:
		return m.applyPortfolioDrawer(msg), nil

	case publicProfileMsg:
		return m.applyPublicProfile(msg), nil

	case agentCreatedMsg:
		return m.applyAgentCreated(msg)

	case profileSavedMsg:
		if msg.err != nil {
			m.notice = "Failed to update profile: " + errNotice(msg.err)
			return m, nil
		}
		m.sess.SetCurrentUser(msg.user)
		m.profile.pendingAvatar = 0
		m.notice = "Profile updated"
		return m, nil

	case marketCycleMsg:
		if msg.err != nil {
			var ae *api.APIError
			if errors.As(msg.err, &ae) && ae.Status == http.StatusForbidden {
				m.notice = "Admin privileges required."
			} else {
				m.notice = "Market cycle failed: " + errNotice(msg.err)
			}
			return m, nil
		}
		// Give the backend a beat to finish the round before refreshing.
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
			return refreshAfterCycleMsg{}
		})

	case refreshAfterCycleMsg:
		return m, m.fetchAgentsCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

type refreshAfterCycleMsg struct{}

// --- Snapshot application ---

func (m Model) applyAgentDetail(msg AgentDetailMsg) Model {
	// The fetch was never cancelled; the user may have moved on. A response
	// for an agent that is no longer selected is dropped silently.
	if selected, ok := m.sess.SelectedAgent(); !ok || selected != msg.ID {
		log.Debug().Str("agent", msg.ID).Msg("detail for deselected agent dropped")
		return m
	}
	if vm, ok := view.BuildDashboard(msg.Detail); ok {
		m.dash = vm
		m.hasDash = true
	}
	// Not-yet-materialized portfolio: keep the previous dashboard visible.
	return m
}

func (m Model) applyPortfolioDrawer(msg drawerAgentMsg) Model {
	if !m.portfolio.open || m.portfolio.agentID != msg.id {
		return m
	}
	switch {
	case msg.err == nil:
		m.portfolio.vm = view.BuildPortfolioDrawer(msg.detail)
		m.portfolio.state = view.DrawerLoaded
	case isNotFound(msg.err):
		m.portfolio.state = view.DrawerNotFound
	default:
		m.portfolio.state = view.DrawerFailed
	}
	return m
}

func (m Model) applyPublicProfile(msg publicProfileMsg) Model {
	if !m.public.open || m.public.username != msg.username {
		return m
	}
	switch {
	case msg.err == nil:
		m.public.vm = view.BuildPublicProfile(msg.profile, m.cfg.AvatarURLTemplate)
		m.public.state = view.DrawerLoaded
	case isNotFound(msg.err):
		m.public.state = view.DrawerNotFound
	default:
		m.public.state = view.DrawerFailed
	}
	return m
}

func (m Model) applyAgentCreated(msg agentCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Keep the modal open with the server's own words; lists stay as
		// they were.
		m.notice = "Error: " + errNotice(msg.err)
		return m, nil
	}
	m.create.open = false
	m.notice = ""
	return m, tea.Batch(m.fetchAgentsCmd(), m.fetchMyAgentsCmd())
}

// --- Router ---

// navigate switches the top-level view. Unrecognized targets are a no-op;
// entering a view fires exactly the data load that view needs.
func (m Model) navigate(target viewID) (Model, tea.Cmd) {
	if _, ok := viewTitles[target]; !ok {
		return m, nil
	}
	if (target == viewMyAgents || target == viewProfile) && !m.sess.IsAuthenticated() {
		m.notice = "Sign in required."
		return m, nil
	}

	m.activeView = target
	m.cursor = 0

	switch target {
	case viewLeaderboard:
		return m, m.fetchAgentsCmd()
	case viewMyAgents:
		return m, m.fetchMyAgentsCmd()
	case viewProfile:
		m.populateProfileForm()
		return m, nil
	}
	return m, nil
}

// populateProfileForm repopulates the editor from the session's current
// user; pending edits are discarded.
func (m *Model) populateProfileForm() {
	u := m.sess.CurrentUser()
	if u == nil {
		return
	}
	m.profile.inputs[profileFieldFirst].SetValue(u.FirstName)
	m.profile.inputs[profileFieldLast].SetValue(u.LastName)
	m.profile.inputs[profileFieldLinkedin].SetValue(u.LinkedinHandle)
	m.profile.inputs[profileFieldTwitter].SetValue(u.TwitterHandle)
	m.profile.pendingAvatar = 0
	m.profile.focus = 0
	m.focusProfileField(0)
}

func (m *Model) selectAgent(id string) tea.Cmd {
	m.sess.SetSelectedAgent(id)
	return m.fetchAgentDetailCmd(id)
}

func (m *Model) clearAgentContext() {
	m.sess.ClearSelectedAgent()
	m.dash = view.Dashboard{}
	m.hasDash = false
}

// --- Commands ---

func (m Model) fetchAgentsCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		agents, err := gw.ListPublicAgents(context.Background())
		if err != nil {
			return PollErrMsg{Kind: "agent-list", Err: err}
		}
		return AgentListMsg{Agents: agents}
	}
}

func (m Model) fetchMyAgentsCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		agents, err := gw.ListMyAgents(context.Background())
		return myAgentsMsg{agents: agents, err: err}
	}
}

func (m Model) fetchMeCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		user, err := gw.GetMe(context.Background())
		return meLoadedMsg{user: user, err: err}
	}
}

func (m Model) fetchAgentDetailCmd(id string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		detail, err := gw.GetAgent(context.Background(), id)
		if err != nil {
			return PollErrMsg{Kind: "agent:" + id, Err: err}
		}
		return AgentDetailMsg{ID: id, Detail: detail}
	}
}

func (m Model) openPortfolioDrawerCmd(id string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		detail, err := gw.GetAgent(context.Background(), id)
		return drawerAgentMsg{id: id, detail: detail, err: err}
	}
}

func (m Model) openPublicProfileCmd(username string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		profile, err := gw.GetPublicProfile(context.Background(), username)
		return publicProfileMsg{username: username, profile: profile, err: err}
	}
}

func (m Model) submitCreateAgentCmd(name, persona string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		agent, err := gw.CreateAgent(context.Background(), name, "gemini", persona)
		return agentCreatedMsg{agent: agent, err: err}
	}
}

func (m Model) saveProfileCmd(update api.ProfileUpdate) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		user, err := gw.PatchMe(context.Background(), update)
		return profileSavedMsg{user: user, err: err}
	}
}

func (m Model) triggerMarketCycleCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		return marketCycleMsg{err: gw.TriggerMarketCycle(context.Background())}
	}
}

// --- Key handling ---

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The terms gate blocks everything except quitting until accepted.
	if m.termsOpen {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", "a":
			_ = m.terms.SetTermsAccepted()
			m.termsOpen = false
		}
		return m, nil
	}

	if m.create.open {
		return m.handleCreateFormKey(msg)
	}

	// The profile editor owns the keyboard while active; plain letters are
	// text, not shortcuts.
	if m.activeView == viewProfile {
		return m.handleProfileFormKey(msg)
	}

	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	// Dismiss notices and drawers before anything else.
	if key.Matches(msg, keys.Esc) {
		switch {
		case m.notice != "":
			m.notice = ""
		case m.portfolio.open:
			m.portfolio.open = false
		case m.public.open:
			m.public.open = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Leaderboard):
		return m.navigate(viewLeaderboard)
	case key.Matches(msg, keys.Dashboard):
		return m.navigate(viewDashboard)
	case key.Matches(msg, keys.MyAgents):
		return m.navigate(viewMyAgents)
	case key.Matches(msg, keys.Profile):
		return m.navigate(viewProfile)

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < m.maxCursor() {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if id, ok := m.cursorAgentID(); ok {
			cmd := m.selectAgent(id)
			next, navCmd := m.navigate(viewDashboard)
			return next, tea.Batch(cmd, navCmd)
		}
		return m, nil

	case key.Matches(msg, keys.Portfolio):
		if id, ok := m.cursorAgentID(); ok {
			m.portfolio = portfolioDrawer{open: true, agentID: id, state: view.DrawerLoading}
			return m, m.openPortfolioDrawerCmd(id)
		}
		return m, nil

	case key.Matches(msg, keys.OwnerProfile):
		if owner, ok := m.cursorOwner(); ok {
			m.public = profileDrawer{open: true, username: owner, state: view.DrawerLoading}
			return m, m.openPublicProfileCmd(owner)
		}
		return m, nil

	case key.Matches(msg, keys.NewAgent):
		if !m.sess.IsAuthenticated() {
			m.notice = "Sign in required."
			return m, nil
		}
		m.openCreateForm()
		return m, nil

	case key.Matches(msg, keys.MarketCycle):
		return m, m.triggerMarketCycleCmd()

	case key.Matches(msg, keys.ClearContext):
		m.clearAgentContext()
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.fetchAgentsCmd()

	case key.Matches(msg, keys.Logout):
		m.sess.Clear()
		m.clearAgentContext()
		m.myAgents = nil
		return m.navigate(viewLeaderboard)
	}

	return m, nil
}

func (m *Model) openCreateForm() {
	m.create.open = true
	m.create.focus = createFieldName
	m.create.inputs[createFieldName].SetValue("")
	m.create.inputs[createFieldPersona].SetValue(defaultPersona)
	m.create.inputs[createFieldName].Focus()
	m.create.inputs[createFieldPersona].Blur()
}

func (m Model) handleCreateFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.create.open = false
		m.notice = ""
		return m, nil
	case "tab", "shift+tab":
		m.create.focus = (m.create.focus + 1) % createFieldCount
		for i := range m.create.inputs {
			if i == m.create.focus {
				m.create.inputs[i].Focus()
			} else {
				m.create.inputs[i].Blur()
			}
		}
		return m, nil
	case "enter":
		name := m.create.inputs[createFieldName].Value()
		if name == "" {
			// Validation failure: no request leaves the client.
			m.notice = "Agent designation is required."
			return m, nil
		}
		return m, m.submitCreateAgentCmd(name, m.create.inputs[createFieldPersona].Value())
	}

	var cmd tea.Cmd
	m.create.inputs[m.create.focus], cmd = m.create.inputs[m.create.focus].Update(msg)
	return m, cmd
}

func (m Model) handleProfileFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		return m.navigate(viewLeaderboard)
	case "tab":
		m.profile.focus = (m.profile.focus + 1) % profileFieldCount
		m.focusProfileField(m.profile.focus)
		return m, nil
	case "up":
		if m.profile.pendingAvatar > 1 {
			m.profile.pendingAvatar--
		} else {
			m.profile.pendingAvatar = maxAvatarSeed
		}
		return m, nil
	case "down":
		if m.profile.pendingAvatar < maxAvatarSeed {
			m.profile.pendingAvatar++
		} else {
			m.profile.pendingAvatar = 1
		}
		return m, nil
	case "enter":
		return m, m.saveProfileCmd(m.profileUpdate())
	}

	var cmd tea.Cmd
	m.profile.inputs[m.profile.focus], cmd = m.profile.inputs[m.profile.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusProfileField(idx int) {
	for i := range m.profile.inputs {
		if i == idx {
			m.profile.inputs[i].Focus()
		} else {
			m.profile.inputs[i].Blur()
		}
	}
}

// profileUpdate gathers the pending edits: the text fields are always
// supplied (matching the editor semantics), the avatar only when the picker
// actually changed it.
func (m Model) profileUpdate() api.ProfileUpdate {
	first := m.profile.inputs[profileFieldFirst].Value()
	last := m.profile.inputs[profileFieldLast].Value()
	linkedin := m.profile.inputs[profileFieldLinkedin].Value()
	twitter := m.profile.inputs[profileFieldTwitter].Value()

	update := api.ProfileUpdate{
		FirstName:      &first,
		LastName:       &last,
		LinkedinHandle: &linkedin,
		TwitterHandle:  &twitter,
	}
	if m.profile.pendingAvatar != 0 {
		avatar := m.profile.pendingAvatar
		update.AvatarID = &avatar
	}
	return update
}

// --- Cursor helpers ---

// cursorAgents returns the list the cursor currently ranges over, in
// rendered order.
func (m Model) cursorAgents() []api.AgentSummary {
	switch m.activeView {
	case viewMyAgents:
		return m.myAgents
	default:
		// Sidebar and leaderboard share the ranked order.
		ranked := view.BuildLeaderboard(m.agents)
		ordered := make([]api.AgentSummary, 0, len(ranked))
		for _, row := range ranked {
			for _, a := range m.agents {
				if a.ID == row.AgentID {
					ordered = append(ordered, a)
					break
				}
			}
		}
		return ordered
	}
}

func (m Model) maxCursor() int {
	n := len(m.cursorAgents())
	if n == 0 {
		return 0
	}
	return n - 1
}

func (m Model) cursorAgentID() (string, bool) {
	agents := m.cursorAgents()
	if m.cursor >= len(agents) {
		return "", false
	}
	return agents[m.cursor].ID, true
}

func (m Model) cursorOwner() (string, bool) {
	agents := m.cursorAgents()
	if m.cursor >= len(agents) {
		return "", false
	}
	return view.Owner(agents[m.cursor]), true
}

// --- Error helpers ---

func errNotice(err error) string {
	var ae *api.APIError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return "network error, please retry"
}

func isNotFound(err error) bool {
	var ae *api.APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}
