package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DaanHessen/lifeline/internal/engine"
	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/store"
	"github.com/DaanHessen/lifeline/internal/text"
	"github.com/DaanHessen/lifeline/internal/util"
)

const (
	viewMainMenu = "main_menu"
	viewCreate   = "create"
	viewScene    = "scene"
	viewEnded    = "ended"
	viewArchive  = "archive"
	viewSettings = "settings"
	viewHelp     = "help"
	viewTimeline = "timeline"
)

const allocationStep = 5

type model struct {
	ctx          context.Context
	sess         *session.Session
	backend      store.Backend
	narrator     text.Narrator
	density      text.Density
	rulesVersion string
	seedText     string
	view         string
	// view to return to from help/settings/timeline
	prevView string
	status   string

	// character creation
	name       string
	alloc      engine.Allocation
	allocIndex int

	// current year
	event         *engine.GameEvent
	choices       []engine.GameChoice
	available     map[string]bool
	sceneRendered string
	timeline      string

	// free-text yearly action
	actionMode  bool
	actionInput string

	// end of life
	epitaph string

	lives        []store.LifeRecord
	archiveIndex int

	theme  string
	styles styles

	width          int
	height         int
	timelineScroll int
}

// initialModel boots to the main menu.
func initialModel(ctx context.Context, sess *session.Session, backend store.Backend, cfg util.Config) model {
	density := text.ParseDensity(cfg.TextDensity)
	lang := sess.State().Settings.Language
	m := model{
		ctx:          ctx,
		sess:         sess,
		backend:      backend,
		density:      density,
		narrator:     text.NewTemplateNarrator(lang, density),
		rulesVersion: cfg.RulesVersion,
		seedText:     cfg.SeedText,
		view:         viewMainMenu,
		alloc:        engine.NewAllocation(),
		theme:        "catppuccin",
	}
	m.applyTheme()
	return m
}

func (m *model) applyTheme() { m.styles = newStyles(paletteFor(m.theme)) }

func (m *model) refreshNarrator() {
	m.narrator = text.NewTemplateNarrator(m.sess.State().Settings.Language, m.density)
}

func (m *model) renderMarkdown(md string) string {
	w := m.width - 34
	if w < 40 {
		w = 70
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(w))
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// tea.Model implementation ---------------------------------------------------
func (m model) Init() tea.Cmd { return nil }

func (m model) View() string {
	switch m.view {
	case viewMainMenu:
		return m.renderMainMenu()
	case viewCreate:
		return m.renderCreate()
	case viewScene:
		return m.renderSceneLayout()
	case viewEnded:
		return m.renderEnded()
	case viewArchive:
		return m.renderArchive()
	case viewSettings:
		return m.renderSettings()
	case viewHelp:
		return m.renderHelp()
	case viewTimeline:
		return m.renderTimeline()
	default:
		return m.renderMainMenu()
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		k := msg.String()
		if k == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case viewMainMenu:
			return m.updateMainMenu(k)
		case viewCreate:
			m.updateCreate(msg)
			return m, nil
		case viewScene:
			return m.updateScene(msg)
		case viewEnded:
			if k == "enter" || k == "esc" {
				m.status = ""
				m.view = viewMainMenu
			}
			return m, nil
		case viewArchive:
			m.updateArchive(k)
			return m, nil
		case viewSettings:
			m.updateSettings(k)
			return m, nil
		case viewHelp:
			if k == "esc" || k == "?" || k == "q" {
				m.view = m.prevView
			}
			return m, nil
		case viewTimeline:
			m.updateTimeline(k)
			return m, nil
		}
	}
	return m, nil
}

func (m model) updateMainMenu(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "1":
		m.name = ""
		m.alloc = engine.NewAllocation()
		m.allocIndex = 0
		m.status = ""
		m.view = viewCreate
	case "2":
		m.continueGame()
	case "3":
		m.refreshArchive()
		m.view = viewArchive
	case "4":
		m.prevView = viewMainMenu
		m.view = viewSettings
	case "5", "?":
		m.prevView = viewMainMenu
		m.view = viewHelp
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) updateCreate(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyUp:
		if m.allocIndex > 0 {
			m.allocIndex--
		}
	case tea.KeyDown:
		if m.allocIndex < len(engine.AllStats)-1 {
			m.allocIndex++
		}
	case tea.KeyRight:
		m.alloc.Adjust(engine.AllStats[m.allocIndex], allocationStep)
	case tea.KeyLeft:
		m.alloc.Adjust(engine.AllStats[m.allocIndex], -allocationStep)
	case tea.KeyTab:
		m.alloc = engine.RandomAllocation(nil)
	case tea.KeyBackspace:
		if r := []rune(m.name); len(r) > 0 {
			m.name = string(r[:len(r)-1])
		}
	case tea.KeyEsc:
		m.view = viewMainMenu
	case tea.KeyEnter:
		m.startNewGame()
	case tea.KeyRunes, tea.KeySpace:
		if len([]rune(m.name)) >= 24 {
			return
		}
		if msg.Type == tea.KeySpace {
			m.name += " "
		} else {
			m.name += string(msg.Runes)
		}
	}
}

// startNewGame validates the creation screen and enters the first year.
func (m *model) startNewGame() {
	name := strings.TrimSpace(m.name)
	if name == "" {
		m.status = "Enter a name first"
		return
	}
	if err := m.alloc.Validate(); err != nil {
		m.status = err.Error()
		return
	}
	m.sess.StartNewGame(engine.NewCharacter(name, m.alloc.Stats, time.Now()))
	m.timeline = ""
	m.status = ""
	m.view = viewScene
	m.beginYear()
}

// continueGame loads the saved life, if any.
func (m *model) continueGame() {
	st, err := m.sess.LoadGame(m.ctx)
	if err != nil {
		m.status = "Could not load save: " + err.Error()
		return
	}
	if st.Status() == session.StatusNotStarted {
		m.status = "No saved life to continue"
		return
	}
	if st.Paused {
		m.sess.ResumeGame()
	}
	m.refreshNarrator()
	m.timeline = ""
	m.status = ""
	m.view = viewScene
	m.beginYear()
}

// beginYear draws this year's event, or a quiet year, and renders the scene.
func (m *model) beginYear() {
	m.event = nil
	m.choices = nil
	m.available = nil
	ev, st, ok := m.sess.NextEvent()
	if st.Character == nil {
		return
	}
	if ok {
		m.event = &ev
		m.choices = ev.Choices
		m.available = map[string]bool{}
		for _, ch := range engine.AvailableChoices(*st.Character, ev, st.History) {
			m.available[ch.ID] = true
		}
	}
	sc := text.Scene{Character: *st.Character, Year: st.GameYear, Event: m.event, Available: m.available}
	md, err := m.narrator.Scene(m.ctx, sc)
	if err != nil {
		md = "Failed to narrate: " + err.Error()
	}
	m.sceneRendered = m.renderMarkdown(md)
	m.timeline += md + "\n"
}

// endYear runs the end check and autosave after a year was played.
func (m *model) endYear() {
	if _, err := m.sess.Autosave(m.ctx); err != nil {
		m.status = "Autosave failed: " + err.Error()
	}
	end := m.sess.CheckEnd()
	if !end.Ended {
		m.beginYear()
		return
	}
	st := m.sess.State()
	c := *st.Character
	score := engine.CharacterScore(c.Stats, c.Age, st.History.Completed)
	md, _ := m.narrator.Epitaph(m.ctx, c, end, score)
	m.epitaph = m.renderMarkdown(md)
	m.timeline += md + "\n"
	m.archiveLife(c, end, score, len(st.History.Completed))
	// clear the save slot so Continue does not resume a finished life
	m.sess.ResetGame()
	if err := m.sess.SaveGame(m.ctx); err != nil && !errors.Is(err, session.ErrNoStore) {
		m.status = "Save failed: " + err.Error()
	}
	m.view = viewEnded
}

func (m *model) archiveLife(c engine.Character, end engine.EndCheck, score, events int) {
	if m.backend == nil {
		return
	}
	rec := store.LifeRecord{
		Name:   c.Name,
		Age:    c.Age,
		Score:  score,
		Reason: string(end.Reason),
		Events: events,
	}
	rec.CharacterID, _ = uuid.Parse(c.ID)
	if _, err := m.backend.ArchiveLife(m.ctx, rec); err != nil {
		m.status = "Archive failed: " + err.Error()
	}
}

func (m *model) choose(idx int) {
	if idx < 0 || idx >= len(m.choices) {
		return
	}
	ch := m.choices[idx]
	if !m.available[ch.ID] {
		m.status = "That choice is not available"
		return
	}
	before := m.sess.State()
	res, _, ok := m.sess.AdvanceYear(ch.ID)
	if !ok {
		m.status = "Choice refused"
		return
	}
	sc := text.Scene{Character: *before.Character, Year: before.GameYear, Event: m.event}
	if md, err := m.narrator.Outcome(m.ctx, sc, ch, res.StatChanges); err == nil {
		m.timeline += md + "\n"
	}
	m.status = ""
	m.endYear()
}

func (m *model) quietYear() {
	if m.event != nil {
		if len(m.available) > 0 {
			m.status = "Pick a choice first"
			return
		}
		// none of the choices can be taken; let the event pass
		m.sess.SetCurrentEvent("")
	}
	if _, _, ok := m.sess.AdvanceYear(""); !ok {
		m.status = "Game is paused"
		return
	}
	m.status = ""
	m.endYear()
}

func (m *model) commitAction() {
	input := m.actionInput
	m.actionInput = ""
	m.actionMode = false
	st := m.sess.State()
	if st.Character == nil {
		return
	}
	a, ok, reason := engine.MatchAction(input, *st.Character)
	if !ok {
		m.status = reason
		return
	}
	changes, _, ok := m.sess.PerformAction(a.ID)
	if !ok {
		m.status = "Action refused"
		return
	}
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s %+d", text.StatLabel(st.Settings.Language, c.Stat), c.Delta))
	}
	m.status = a.Title + ": " + strings.Join(parts, ", ")
	m.timeline += "- " + m.status + "\n"
}

func (m model) updateScene(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if m.actionMode {
		switch msg.Type {
		case tea.KeyEnter:
			m.commitAction()
		case tea.KeyEsc:
			m.actionMode = false
			m.actionInput = ""
		case tea.KeyBackspace:
			if len(m.actionInput) > 0 {
				m.actionInput = m.actionInput[:len(m.actionInput)-1]
			}
		case tea.KeyRunes, tea.KeySpace:
			if msg.Type == tea.KeySpace {
				m.actionInput += " "
			} else {
				m.actionInput += string(msg.Runes)
			}
		}
		return m, nil
	}
	switch k {
	case "q":
		return m, tea.Quit
	case "/":
		m.actionMode = true
	case "n", "enter":
		m.quietYear()
	case "p":
		if m.sess.State().Paused {
			m.sess.ResumeGame()
			m.status = ""
		} else {
			m.sess.PauseGame()
			m.status = "Paused"
		}
	case "ctrl+s":
		if err := m.sess.SaveGame(m.ctx); err != nil {
			m.status = "Save failed: " + err.Error()
		} else {
			m.status = "Saved"
		}
	case "y":
		m.prevView = viewScene
		m.view = viewTimeline
	case "s":
		m.prevView = viewScene
		m.view = viewSettings
	case "?":
		m.prevView = viewScene
		m.view = viewHelp
	case "m":
		if err := m.sess.SaveGame(m.ctx); err != nil && !errors.Is(err, session.ErrNoStore) {
			m.status = "Save failed: " + err.Error()
		}
		m.view = viewMainMenu
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			m.choose(int(k[0] - '1'))
		}
	}
	return m, nil
}

func (m *model) updateArchive(k string) {
	switch k {
	case "up", "k":
		if m.archiveIndex > 0 {
			m.archiveIndex--
		}
	case "down", "j":
		if m.archiveIndex < len(m.lives)-1 {
			m.archiveIndex++
		}
	case "esc", "q":
		m.view = viewMainMenu
	}
}

func (m *model) refreshArchive() {
	m.lives = nil
	m.archiveIndex = 0
	if m.backend == nil {
		return
	}
	lives, err := m.backend.TopLives(m.ctx, 20)
	if err != nil {
		m.status = "Archive unavailable: " + err.Error()
		return
	}
	m.lives = lives
}

func (m *model) updateSettings(k string) {
	st := m.sess.State().Settings
	switch k {
	case "o":
		m.sess.ToggleSound()
	case "u":
		m.sess.ToggleMusic()
	case "a":
		st.AutoSave = !st.AutoSave
		m.sess.UpdateSettings(st)
	case "v":
		st.Difficulty = cycleDifficulty(st.Difficulty)
		m.sess.UpdateSettings(st)
	case "g":
		st.Language = cycleLanguage(st.Language)
		m.sess.UpdateSettings(st)
		m.refreshNarrator()
	case "d":
		m.density = cycleDensity(m.density)
		m.refreshNarrator()
	case "t":
		m.theme = nextThemeName(m.theme, 1)
		m.applyTheme()
	case "esc", "q":
		m.view = m.prevView
	}
}

func (m *model) updateTimeline(k string) {
	switch k {
	case "pgdown", "ctrl+f":
		m.timelineScroll += 12
	case "pgup", "ctrl+b":
		m.timelineScroll -= 12
	case "down", "j":
		m.timelineScroll += 3
	case "up", "k":
		m.timelineScroll -= 3
	case "home":
		m.timelineScroll = 0
	case "end":
		m.timelineScroll = 1 << 30
	case "esc", "q":
		m.view = m.prevView
	}
	if m.timelineScroll < 0 {
		m.timelineScroll = 0
	}
}

func cycleDifficulty(d engine.Difficulty) engine.Difficulty {
	all := engine.ListDifficulties()
	for i, x := range all {
		if x == d {
			return all[(i+1)%len(all)]
		}
	}
	return engine.DifficultyNormal
}

func cycleLanguage(l engine.Language) engine.Language {
	all := engine.ListLanguages()
	for i, x := range all {
		if x == l {
			return all[(i+1)%len(all)]
		}
	}
	return engine.LanguageEnglish
}

func cycleDensity(cur text.Density) text.Density {
	switch cur {
	case text.DensityConcise:
		return text.DensityStandard
	case text.DensityStandard:
		return text.DensityRich
	default:
		return text.DensityConcise
	}
}
