package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/lifeline/internal/engine"
	"github.com/DaanHessen/lifeline/internal/text"
)

// Layout rendering -----------------------------------------------------------
func (m *model) renderSceneLayout() string {
	w := m.width
	if w <= 0 {
		w = 100
	}
	sidebarWidth := 30
	if w < 90 {
		sidebarWidth = 24
	}
	mainWidth := w - sidebarWidth - 1

	top := m.renderTopBar()
	main := lipgloss.NewStyle().Width(mainWidth).Render(m.sceneRendered)
	side := m.styles.panel.Width(sidebarWidth).Render(m.buildSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, main, side)
	return lipgloss.JoinVertical(lipgloss.Left, top, body, m.renderBottomBar())
}

func (m *model) renderTopBar() string {
	st := m.sess.State()
	left := "LIFELINE"
	right := ""
	if c := st.Character; c != nil {
		left = strings.Join([]string{"LIFELINE", c.Name, string(c.Phase())}, " • ")
		right = fmt.Sprintf("Year %d  Age %d", st.GameYear, c.Age)
	}
	if st.Paused {
		right += "  [PAUSED]"
	}
	w := m.width
	if w <= 0 {
		w = 100
	}
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.title.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *model) renderBottomBar() string {
	keys := "[1-9] choose  [N] next year  [/] action  [P] pause  [Ctrl+S] save  [Y] timeline  [S] settings  [M] menu  [?] help  [Q] quit"
	line := ""
	if m.actionMode {
		line = "Action> " + m.actionInput + "_"
	}
	if m.status != "" {
		if line != "" {
			line += "  "
		}
		line += "[" + m.status + "]"
	}
	return m.styles.muted.Render(keys) + "\n" + m.styles.warning.Render(line)
}

func (m *model) buildSidebar() string {
	st := m.sess.State()
	c := st.Character
	if c == nil {
		return "(no life)"
	}
	lang := st.Settings.Language
	var b strings.Builder
	b.WriteString(m.styles.title.Render("CHARACTER") + "\n")
	b.WriteString(fmt.Sprintf("%s, %d\n%s\n\n", c.Name, c.Age, c.Phase()))
	b.WriteString(m.styles.title.Render("STATS") + "\n")
	for _, key := range engine.AllStats {
		v, _ := c.Stats.Get(key)
		b.WriteString(m.statLine(abbrev(text.StatLabel(lang, key)), v) + "\n")
	}
	b.WriteString("\n" + m.styles.title.Render("OUTLOOK") + "\n")
	b.WriteString(fmt.Sprintf("Well-being %d\n", engine.WellBeingScore(c.Stats)))
	b.WriteString(fmt.Sprintf("Expectancy %d\n", engine.LifeExpectancy(c.Stats, c.Age)))
	b.WriteString(fmt.Sprintf("Score %d\n", engine.CharacterScore(c.Stats, c.Age, st.History.Completed)))
	if syn := engine.SynergyBonus(c.Stats); len(syn) > 0 {
		b.WriteString("Synergy ")
		for _, key := range engine.AllStats {
			if v, ok := syn[key]; ok {
				b.WriteString(fmt.Sprintf("%s%+d ", abbrev(string(key)), v))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\nEvents %d", len(st.History.Completed)))
	return b.String()
}

func (m *model) statLine(label string, v int) string {
	return fmt.Sprintf("%-3s %s %3d", label, m.bar(v), v)
}

// bar draws a ten cell meter; values under 30 use the low colour.
func (m *model) bar(v int) string {
	width := 10
	fill := int((float64(v)/100.0)*float64(width) + 0.5)
	if fill > width {
		fill = width
	}
	if fill < 0 {
		fill = 0
	}
	style := m.styles.fill
	if v < 30 {
		style = m.styles.low
	}
	return style.Render(strings.Repeat("█", fill)) + m.styles.empty.Render(strings.Repeat("·", width-fill))
}

func abbrev(k string) string {
	r := []rune(k)
	if len(r) <= 3 {
		return k
	}
	return string(r[:3])
}

// Main menu rendering.
func (m *model) renderMainMenu() string {
	content := m.styles.title.Render("LIFELINE • MAIN MENU") +
		"\n\n[1] New Life\n[2] Continue\n[3] Archive\n[4] Settings\n[5] Help\n\nQ Quit"
	if m.status != "" {
		content += "\n\n" + m.styles.warning.Render(m.status)
	}
	return m.styles.panel.Padding(1, 2).Width(50).Render(content)
}

func (m *model) renderCreate() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("NEW LIFE") + "\n\n")
	b.WriteString("Name: " + m.name + "_\n\n")
	lang := m.sess.State().Settings.Language
	for i, key := range engine.AllStats {
		cursor := "  "
		if i == m.allocIndex {
			cursor = "> "
		}
		v, _ := m.alloc.Stats.Get(key)
		b.WriteString(fmt.Sprintf("%s%-14s %s %3d\n", cursor, text.StatLabel(lang, key), m.bar(v), v))
	}
	b.WriteString(fmt.Sprintf("\nPoints left: %d\n\n", m.alloc.Remaining))
	b.WriteString(m.styles.muted.Render("Type a name • Up/Down pick • Left/Right adjust • Tab random • Enter start • Esc back"))
	if m.status != "" {
		b.WriteString("\n" + m.styles.warning.Render(m.status))
	}
	return m.styles.panel.Render(b.String())
}

func (m *model) renderEnded() string {
	out := m.epitaph + "\n" + m.styles.muted.Render("Enter to return to the menu")
	if m.status != "" {
		out += "\n" + m.styles.warning.Render(m.status)
	}
	return out
}

func (m *model) renderArchive() string {
	if len(m.lives) == 0 {
		return "Archive\n(no lives yet)\nEsc to return"
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render("ARCHIVE") + " (Up/Down, Esc back)\n")
	for i, l := range m.lives {
		cursor := "  "
		if i == m.archiveIndex {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-18s age %-3d score %-5d %s\n", cursor, l.Name, l.Age, l.Score, l.Reason))
	}
	sel := m.lives[m.archiveIndex]
	b.WriteString(fmt.Sprintf("\n%s lived %d years, faced %d events, ended %s.",
		sel.Name, sel.Age, sel.Events, sel.EndedAt.Format("2006-01-02")))
	return b.String()
}

func (m *model) renderHelp() string {
	return fmt.Sprintf("HELP\n\nSeed & Rules: %s • %s\n\nEvery life starts at %d. Each year you either face an event and pick one of its"+
		" choices, or live a quiet year. Stats slowly decay as you age. Between years type a custom action after /"+
		" (study, gym, travel...). The life ends when health reaches zero or, past 80, by chance.\n\n"+
		"Controls: 1-9 choose | N next quiet year | / action | P pause | Ctrl+S save | Y timeline | S settings | M menu | Q quit.\n\nEsc returns from subviews.",
		m.seedText, m.rulesVersion, engine.StartingAge)
}

func (m *model) renderSettings() string {
	s := m.sess.State().Settings
	return fmt.Sprintf("Settings\nTheme: %s (t cycle)\nDensity: %s (d cycle)\nLanguage: %s (g cycle)\nDifficulty: %s (v cycle)\n"+
		"Sound: %v (o toggle)\nMusic: %v (u toggle)\nAutosave: %v (a toggle)\n\nEsc back",
		m.theme, m.density, s.Language, s.Difficulty, s.SoundEnabled, s.MusicEnabled, s.AutoSave)
}

// renderTimeline displays the accumulated scene and outcome history with simple scrolling.
func (m *model) renderTimeline() string {
	title := "TIMELINE (PgUp/PgDn, Up/Down, Home/End, Esc back)"
	lines := strings.Split(m.timeline, "\n")
	h := m.height
	if h <= 0 {
		h = 30
	}
	avail := h - 2
	if avail < 1 {
		avail = len(lines)
	}
	start := m.timelineScroll
	maxStart := len(lines) - avail
	if maxStart < 0 {
		maxStart = 0
	}
	if start > maxStart {
		start = maxStart
	}
	m.timelineScroll = start
	view := lines
	if len(lines) > avail {
		view = lines[start : start+avail]
	}
	return title + "\n" + strings.Join(view, "\n")
}
