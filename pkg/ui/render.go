package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arena-dashboard/pkg/view"
)

const sidebarWidth = 30

func (m Model) View() string {
	if m.termsOpen {
		return m.renderTermsModal()
	}
	if m.create.open {
		return m.renderCreateModal()
	}

	var body string
	switch m.activeView {
	case viewLeaderboard:
		body = m.renderLeaderboard()
	case viewDashboard:
		body = m.renderDashboard()
	case viewMyAgents:
		body = m.renderMyAgents()
	case viewProfile:
		body = m.renderProfile()
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)

	sections := []string{m.renderHeader(), main}
	if m.portfolio.open {
		sections = append(sections, m.renderPortfolioDrawer())
	}
	if m.public.open {
		sections = append(sections, m.renderPublicProfileDrawer())
	}
	if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	sections = append(sections, m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- Chrome ---

func (m Model) renderHeader() string {
	titles := viewTitles[m.activeView]
	left := titleStyle.Render(titles[0]) + "  " + subtitleStyle.Render(titles[1])

	var right string
	if u := m.sess.CurrentUser(); u != nil {
		right = successStyle.Render("● " + u.Username)
	} else {
		// Guests see the prompt instead of the account pill; protected
		// views stay hidden from the nav line below.
		right = dimStyle.Render("Sign In / Register to compete")
	}

	nav := m.renderNav()
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
		nav,
	)
}

func (m Model) renderNav() string {
	items := []struct {
		id    viewID
		label string
		auth  bool
	}{
		{viewLeaderboard, "[l] Leaderboard", false},
		{viewDashboard, "[d] Dashboard", false},
		{viewMyAgents, "[m] My Agents", true},
		{viewProfile, "[p] Profile", true},
	}

	var parts []string
	for _, it := range items {
		if it.auth && !m.sess.IsAuthenticated() {
			continue
		}
		if it.id == m.activeView {
			parts = append(parts, selectedStyle.Render(it.label))
		} else {
			parts = append(parts, dimStyle.Render(it.label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderSidebar() string {
	selected, _ := m.sess.SelectedAgent()
	entries := view.BuildRanking(m.agents, selected)

	var b strings.Builder
	b.WriteString(headerStyle.Render("TOP AGENTS"))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render(m.spinner.View() + " loading..."))
	}
	for i, e := range entries {
		line := fmt.Sprintf("%2d. %-14s %s", e.Rank, truncate(e.Name, 14), pnlStyle(e.Positive).Render(e.PnL))
		if m.activeView != viewMyAgents && i == m.cursor {
			line = selectedStyle.Render("▸ " + line)
		} else if e.Selected {
			line = labelStyle.Render("  " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return panelStyle.Width(sidebarWidth).Render(b.String())
}

// --- Views ---

func (m Model) renderLeaderboard() string {
	rows := view.BuildLeaderboard(m.agents)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-18s %-14s %12s %10s", "#", "AGENT", "OWNER", "EQUITY", "CHANGE")))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render(m.spinner.View() + " waiting for the first snapshot"))
	}
	for i, r := range rows {
		line := fmt.Sprintf("%-4d %-18s %-14s %12s %10s",
			r.Rank, truncate(r.Name, 18), truncate(r.Owner, 14), r.Equity, pnlStyle(r.Positive).Render(r.Change))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return panelStyle.Render(b.String())
}

func (m Model) renderDashboard() string {
	if !m.hasDash {
		// No agent context yet: every numeric slot shows the placeholder
		// until a selection lands.
		var b strings.Builder
		b.WriteString(headerStyle.Render("DASHBOARD"))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("TOTAL EQUITY") + "  ---\n")
		b.WriteString(labelStyle.Render("CASH BALANCE") + "  ---\n")
		b.WriteString(labelStyle.Render("TOTAL P&L") + "     ---\n\n")
		b.WriteString(dimStyle.Render("Select an agent from the leaderboard (enter) to load a dashboard."))
		return panelStyle.Render(b.String())
	}

	d := m.dash
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.AgentName))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(d.Provider))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("TOTAL EQUITY") + "  " + d.TotalEquity + "\n")
	b.WriteString(labelStyle.Render("CASH BALANCE") + "  " + d.CashBalance + "\n")
	b.WriteString(labelStyle.Render("TOTAL P&L") + "     " + pnlStyle(d.PnLPositive).Render(d.PnL) + "\n\n")

	b.WriteString(headerStyle.Render("POSITIONS"))
	b.WriteString("\n")
	if len(d.Positions) == 0 {
		b.WriteString(dimStyle.Render(view.CashOnlyRow) + "\n")
	}
	for _, p := range d.Positions {
		b.WriteString(fmt.Sprintf("%-8s %8g @ %10s  now %10s  %s\n",
			p.Ticker, p.Quantity, p.AvgCost, p.CurrentPrice, pnlStyle(p.Positive).Render(p.PnL)))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("ALLOCATION"))
	b.WriteString("\n")
	for _, seg := range d.Allocation {
		b.WriteString(fmt.Sprintf("%-8s %s %s\n",
			seg.Label, renderBar(seg.Share, 24), view.FormatMoney(seg.Value, 0)))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("NEURAL ACTIVITY LOG"))
	b.WriteString("\n")
	if len(d.Logs) == 0 {
		b.WriteString(dimStyle.Render(view.LogsEmptyState) + "\n")
	}
	for _, l := range limitLogs(d.Logs, 6) {
		b.WriteString(dimStyle.Render(l.Time) + " " + l.Thoughts + "\n")
		if l.Decision != "" {
			b.WriteString("  " + labelStyle.Render(l.Decision) + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("RECENT TRADES"))
	b.WriteString("\n")
	if len(d.Trades) == 0 {
		b.WriteString(dimStyle.Render(view.TradesEmptyState) + "\n")
	}
	for _, t := range limitTrades(d.Trades, 8) {
		side := successStyle
		if !t.IsBuy {
			side = dangerStyle
		}
		b.WriteString(dimStyle.Render(t.Time) + " " + side.Render(t.Action) + " " + t.Summary)
		if t.Realized != "" {
			b.WriteString("  " + labelStyle.Render(t.Realized))
		}
		b.WriteString("\n")
		if t.Reason != "" {
			b.WriteString("  " + dimStyle.Render(truncate(t.Reason, 72)) + "\n")
		}
	}

	return panelStyle.Render(b.String())
}

func (m Model) renderMyAgents() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("MY AGENTS"))
	b.WriteString("   ")
	b.WriteString(dimStyle.Render("[n] deploy new agent"))
	b.WriteString("\n\n")

	cards := view.BuildAgentCards(m.myAgents)
	if len(cards) == 0 {
		b.WriteString(dimStyle.Render(view.MyAgentsEmptyState))
		return panelStyle.Render(b.String())
	}
	for i, c := range cards {
		line := fmt.Sprintf("%-18s %-10s %12s %10s",
			truncate(c.Name, 18), c.Provider, c.Equity, pnlStyle(c.Positive).Render(c.PnL))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return panelStyle.Render(b.String())
}

func (m Model) renderProfile() string {
	u := m.sess.CurrentUser()
	var b strings.Builder
	b.WriteString(headerStyle.Render("IDENTITY SETTINGS"))
	b.WriteString("\n\n")

	if u != nil {
		seed := m.profile.pendingAvatar
		if seed == 0 {
			seed = u.AvatarID
		}
		b.WriteString(labelStyle.Render("AVATAR") + fmt.Sprintf("  #%d of %d  ", clampAvatar(seed), maxAvatarSeed))
		b.WriteString(dimStyle.Render("(up/down to change)"))
		b.WriteString("\n\n")
	}

	fields := [profileFieldCount]string{"First name", "Last name", "LinkedIn", "Twitter"}
	for i, in := range m.profile.inputs {
		label := labelStyle.Render(fmt.Sprintf("%-12s", strings.ToUpper(fields[i])))
		b.WriteString(label + " " + in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab next field · enter save · esc back"))
	return panelStyle.Render(b.String())
}

// --- Drawers and modals ---

func (m Model) renderPortfolioDrawer() string {
	var b strings.Builder
	switch m.portfolio.state {
	case view.DrawerLoading:
		b.WriteString(m.spinner.View() + " " + view.DrawerLoadingText)
	case view.DrawerNotFound:
		b.WriteString(dimStyle.Render(view.DrawerNotFoundText))
	case view.DrawerFailed:
		b.WriteString(dangerStyle.Render(view.DrawerFailedText))
	case view.DrawerLoaded:
		vm := m.portfolio.vm
		b.WriteString(titleStyle.Render(vm.Title))
		b.WriteString("  ")
		b.WriteString(pnlStyle(vm.Positive).Render(vm.PnL))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(vm.Subtitle))
		b.WriteString("\n")
		if len(vm.Positions) == 0 {
			b.WriteString(dimStyle.Render(view.DrawerCashOnly))
		}
		for _, seg := range vm.Allocation {
			b.WriteString(fmt.Sprintf("%-8s %s %s\n",
				seg.Label, renderBar(seg.Share, 20), view.FormatMoney(seg.Value, 0)))
		}
	}
	return drawerStyle.Render(b.String())
}

func (m Model) renderPublicProfileDrawer() string {
	var b strings.Builder
	switch m.public.state {
	case view.DrawerLoading:
		b.WriteString(m.spinner.View() + " " + view.DrawerLoadingText)
	case view.DrawerNotFound:
		b.WriteString(dimStyle.Render(view.DrawerNotFoundText))
	case view.DrawerFailed:
		b.WriteString(dangerStyle.Render(view.DrawerFailedText))
	case view.DrawerLoaded:
		vm := m.public.vm
		b.WriteString(titleStyle.Render(vm.DisplayName))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(vm.Username))
		b.WriteString("\n")
		if vm.Linkedin != "" {
			b.WriteString(labelStyle.Render("LINKEDIN") + " " + vm.Linkedin + "\n")
		}
		if vm.Twitter != "" {
			b.WriteString(labelStyle.Render("TWITTER") + "  " + vm.Twitter + "\n")
		}
		b.WriteString("\n" + headerStyle.Render("ACTIVE AGENTS") + "\n")
		if len(vm.Agents) == 0 {
			b.WriteString(dimStyle.Render(view.PublicAgentsEmptyState) + "\n")
		}
		for _, a := range vm.Agents {
			b.WriteString(fmt.Sprintf("%-18s %-10s %s\n",
				truncate(a.Name, 18), a.Provider, pnlStyle(a.Positive).Render(a.PnL)))
		}
	}
	return drawerStyle.Render(b.String())
}

func (m Model) renderTermsModal() string {
	body := titleStyle.Render("Terms of Engagement") + "\n\n" +
		"Arena agents trade simulated capital only. Rankings are\n" +
		"recomputed from live equity and carry no financial advice.\n\n" +
		successStyle.Render("[enter] accept") + "   " + dimStyle.Render("[q] quit")
	return modalStyle.Render(body)
}

func (m Model) renderCreateModal() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Deploy New Agent"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("NAME    ") + " " + m.create.inputs[createFieldName].View() + "\n")
	b.WriteString(labelStyle.Render("PERSONA ") + " " + m.create.inputs[createFieldPersona].View() + "\n")
	if m.notice != "" {
		b.WriteString("\n" + dangerStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab switch field · enter deploy · esc cancel"))
	return modalStyle.Render(b.String())
}

// --- Small helpers ---

func renderBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	return successStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func limitLogs(logs []view.LogEntry, n int) []view.LogEntry {
	if len(logs) > n {
		return logs[:n]
	}
	return logs
}

func limitTrades(trades []view.TradeEntry, n int) []view.TradeEntry {
	if len(trades) > n {
		return trades[:n]
	}
	return trades
}

func clampAvatar(seed int) int {
	if seed < 1 {
		return 1
	}
	if seed > maxAvatarSeed {
		return maxAvatarSeed
	}
	return seed
}
