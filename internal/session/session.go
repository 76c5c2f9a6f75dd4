// Package session owns a single life: the character, its event history and the year counter.
// Every mutation goes through the engine and is serialized by the session mutex.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DaanHessen/lifeline/internal/engine"
)

// DefaultKey is the storage key used when WithStore is given an empty key.
const DefaultKey = "life-line-game-storage"

// Status is the lifecycle position of a session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusPaused     Status = "paused"
)

// Settings are player preferences. They survive ResetGame.
type Settings struct {
	SoundEnabled  bool              `json:"sound_enabled"`
	MusicEnabled  bool              `json:"music_enabled"`
	Notifications bool              `json:"notifications"`
	AutoSave      bool              `json:"auto_save"`
	Difficulty    engine.Difficulty `json:"difficulty"`
	Language      engine.Language   `json:"language"`
}

// DefaultSettings mirrors a fresh install.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:  true,
		MusicEnabled:  true,
		Notifications: true,
		AutoSave:      true,
		Difficulty:    engine.DifficultyNormal,
		Language:      engine.LanguageEnglish,
	}
}

func (s Settings) normalized() Settings {
	if !s.Difficulty.Validate() {
		s.Difficulty = engine.DifficultyNormal
	}
	if !s.Language.Validate() {
		s.Language = engine.LanguageEnglish
	}
	return s
}

// State is a detached copy of the session. Mutating it has no effect on the session.
type State struct {
	Character      *engine.Character
	History        engine.History
	CurrentEventID string
	GameYear       int
	Settings       Settings
	Started        bool
	Paused         bool
}

// Status derives the lifecycle position.
func (s State) Status() Status {
	switch {
	case s.Character == nil || !s.Started:
		return StatusNotStarted
	case s.Paused:
		return StatusPaused
	default:
		return StatusActive
	}
}

func (s State) clone() State {
	out := s
	if s.Character != nil {
		c := s.Character.Clone()
		out.Character = &c
	}
	out.History = s.History.Clone()
	return out
}

// Session is safe for concurrent use; callers observe each operation as one atomic step.
type Session struct {
	mu sync.Mutex

	log           *zap.Logger
	store         Store
	key           string
	src           engine.Source
	catalog       *engine.Catalog
	now           func() time.Time
	autosaveEvery int
	savedYear     int

	state State
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStore attaches persistence under key.
func WithStore(st Store, key string) Option {
	return func(s *Session) {
		s.store = st
		if key != "" {
			s.key = key
		}
	}
}

// WithSource injects the randomness used for event draws and the old-age roll.
func WithSource(src engine.Source) Option {
	return func(s *Session) {
		if src != nil {
			s.src = src
		}
	}
}

// WithCatalog replaces the embedded event catalog.
func WithCatalog(c *engine.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAutosaveEvery makes Autosave write once every n game years. n < 1 means every year.
func WithAutosaveEvery(n int) Option {
	return func(s *Session) {
		if n < 1 {
			n = 1
		}
		s.autosaveEvery = n
	}
}

// New builds a NotStarted session.
func New(opts ...Option) *Session {
	s := &Session{
		log:           zap.NewNop(),
		key:           DefaultKey,
		src:           engine.SystemSource(),
		now:           time.Now,
		autosaveEvery: 1,
		state:         State{Settings: DefaultSettings()},
	}
	for _, o := range opts {
		o(s)
	}
	if s.catalog == nil {
		s.catalog = engine.MustDefaultCatalog()
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Catalog is the event catalog the session draws from.
func (s *Session) Catalog() *engine.Catalog { return s.catalog }

// CurrentEvent resolves the current event id against the catalog.
func (s *Session) CurrentEvent() (engine.GameEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentEventID == "" {
		return engine.GameEvent{}, false
	}
	return s.catalog.Get(s.state.CurrentEventID)
}

// active reports whether mutations are allowed. Caller holds mu.
func (s *Session) active() bool {
	return s.state.Character != nil && s.state.Started && !s.state.Paused
}

// touch records play time on the live character. Caller holds mu.
func (s *Session) touch() {
	if s.state.Character != nil {
		s.state.Character.LastPlayedAt = s.now()
	}
}
