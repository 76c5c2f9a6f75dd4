package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/DaanHessen/lifeline/internal/engine"
)

// SnapshotVersion is bumped whenever the persisted shape changes incompatibly.
const SnapshotVersion = 1

var (
	// ErrNoStore is returned by persistence calls on a session built without WithStore.
	ErrNoStore = errors.New("session has no store")
	// ErrCorruptSnapshot marks a stored record that fails validation.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Store is the persistence capability. Load reports found=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (Snapshot, bool, error)
	Save(ctx context.Context, key string, snap Snapshot) error
}

// Snapshot is the persisted record of a session.
type Snapshot struct {
	Character       *engine.Character `json:"character"`
	CompletedEvents []string          `json:"completed_events"`
	UnlockedEvents  []string          `json:"unlocked_events,omitempty"`
	LockedEvents    []string          `json:"locked_events,omitempty"`
	GameYear        int               `json:"game_year"`
	SoundEnabled    bool              `json:"sound_enabled"`
	MusicEnabled    bool              `json:"music_enabled"`
	IsGameStarted   bool              `json:"is_game_started"`
	Settings        Settings          `json:"settings"`
	Version         int               `json:"version"`
	SavedAt         time.Time         `json:"saved_at"`
}

// Validate rejects snapshots that would break the stat and age invariants on load.
func (s Snapshot) Validate() error {
	if s.Version > SnapshotVersion {
		return pkgerrors.Wrapf(ErrCorruptSnapshot, "version %d is newer than %d", s.Version, SnapshotVersion)
	}
	if s.GameYear < 0 {
		return pkgerrors.Wrapf(ErrCorruptSnapshot, "negative game year %d", s.GameYear)
	}
	if s.IsGameStarted && s.Character == nil {
		return pkgerrors.Wrap(ErrCorruptSnapshot, "started game without character")
	}
	if c := s.Character; c != nil && !c.Valid() {
		return pkgerrors.Wrapf(ErrCorruptSnapshot, "character age=%d stats=%+v", c.Age, c.Stats)
	}
	return nil
}

// EncodeSnapshot serializes a snapshot as JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode snapshot")
	}
	return b, nil
}

// DecodeSnapshot parses and validates a JSON snapshot.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if len(bytes.TrimSpace(b)) == 0 {
		return s, pkgerrors.Wrap(ErrCorruptSnapshot, "empty record")
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, pkgerrors.Wrap(ErrCorruptSnapshot, err.Error())
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// snapshot captures the state for persistence. Caller holds mu.
func (s *Session) snapshot() Snapshot {
	st := s.state.clone()
	return Snapshot{
		Character:       st.Character,
		CompletedEvents: st.History.Completed,
		UnlockedEvents:  st.History.Unlocked,
		LockedEvents:    st.History.Locked,
		GameYear:        st.GameYear,
		SoundEnabled:    st.Settings.SoundEnabled,
		MusicEnabled:    st.Settings.MusicEnabled,
		IsGameStarted:   st.Started,
		Settings:        st.Settings,
		Version:         SnapshotVersion,
		SavedAt:         s.now().UTC(),
	}
}

// restore replaces the state from a validated snapshot. Caller holds mu.
func (s *Session) restore(snap Snapshot) {
	settings := snap.Settings
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}
	settings.SoundEnabled = snap.SoundEnabled
	settings.MusicEnabled = snap.MusicEnabled
	st := State{
		History: engine.History{
			Completed: append([]string{}, snap.CompletedEvents...),
			Unlocked:  append([]string{}, snap.UnlockedEvents...),
			Locked:    append([]string{}, snap.LockedEvents...),
		},
		GameYear: snap.GameYear,
		Settings: settings.normalized(),
	}
	// a character that was never started is not a life to resume
	if snap.Character != nil && snap.IsGameStarted {
		c := snap.Character.Clone()
		c.CompletedEvents = append([]string(nil), st.History.Completed...)
		st.Character = &c
		st.Started = true
	}
	s.state = st
	s.savedYear = st.GameYear
}

// LoadGame replaces the session with the stored snapshot. A missing record leaves a NotStarted
// session and no error. A read failure or corrupt record also leaves NotStarted and returns the
// error.
func (s *Session) LoadGame(ctx context.Context) (State, error) {
	if s.store == nil {
		return s.State(), ErrNoStore
	}
	snap, found, err := s.store.Load(ctx, s.key)
	if err == nil && found {
		err = snap.Validate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || !found {
		s.state = State{Settings: s.state.Settings}
		s.savedYear = 0
		if err != nil {
			s.log.Warn("load failed, starting empty", zap.String("key", s.key), zap.Error(err))
			return s.state.clone(), pkgerrors.Wrap(err, "load game")
		}
		return s.state.clone(), nil
	}
	s.restore(snap)
	s.log.Info("game loaded", zap.String("key", s.key), zap.Int("year", s.state.GameYear))
	return s.state.clone(), nil
}

// SaveGame persists the current state. A failed save leaves the session untouched.
func (s *Session) SaveGame(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()
	if err := s.store.Save(ctx, s.key, snap); err != nil {
		s.log.Warn("save failed", zap.String("key", s.key), zap.Error(err))
		return pkgerrors.Wrap(err, "save game")
	}
	s.mu.Lock()
	s.savedYear = snap.GameYear
	s.mu.Unlock()
	s.log.Debug("game saved", zap.String("key", s.key), zap.Int("year", snap.GameYear))
	return nil
}

// Autosave saves when auto-save is on and at least the configured number of years passed since
// the last save. It reports whether a save happened.
func (s *Session) Autosave(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	s.mu.Lock()
	due := s.state.Settings.AutoSave && s.state.Character != nil &&
		s.state.GameYear-s.savedYear >= s.autosaveEvery
	s.mu.Unlock()
	if !due {
		return false, nil
	}
	if err := s.SaveGame(ctx); err != nil {
		return false, err
	}
	return true, nil
}
