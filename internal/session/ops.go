package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DaanHessen/lifeline/internal/engine"
)

// StartNewGame begins a fresh life with c. Year, history and current event are reset; settings
// are kept.
func (s *Session) StartNewGame(c engine.Character) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	c = c.Clone()
	c.Stats = c.Stats.Clamped()
	c.CompletedEvents = nil
	c.DecayResidue = engine.Stats{}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Age < 0 {
		c.Age = 0
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.LastPlayedAt = now
	s.state = State{
		Character: &c,
		History:   engine.NewHistory(),
		Settings:  s.state.Settings,
		Started:   true,
	}
	s.savedYear = 0
	s.log.Info("new game", zap.String("character_id", c.ID), zap.String("name", c.Name), zap.Int("age", c.Age))
	return s.state.clone()
}

// PauseGame moves Active to Paused. Without a started life it does nothing.
func (s *Session) PauseGame() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Character == nil || !s.state.Started {
		return s.state.clone(), false
	}
	s.state.Paused = true
	return s.state.clone(), true
}

// ResumeGame moves Paused back to Active. Without a started life it does nothing.
func (s *Session) ResumeGame() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Character == nil || !s.state.Started {
		return s.state.clone(), false
	}
	s.state.Paused = false
	return s.state.clone(), true
}

// UpdateCharacterStats applies d to the character in one step.
func (s *Session) UpdateCharacterStats(d engine.Delta) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return s.state.clone(), false
	}
	s.state.Character.Stats = s.state.Character.Stats.Apply(d)
	s.touch()
	return s.state.clone(), true
}

// AgeCharacter advances one year: age and game year go up by one and the decay of the phase the
// character lands in is applied.
func (s *Session) AgeCharacter() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return s.state.clone(), false
	}
	s.tick(nil)
	return s.state.clone(), true
}

// tick ages the character with choice summed into the year's decay. Caller holds mu.
func (s *Session) tick(choice engine.Delta) {
	c := s.state.Character
	c.Age++
	s.state.GameYear++
	phase := engine.PhaseForAge(c.Age)
	stats, residue, decay := engine.YearTick(c.Stats, c.DecayResidue, phase, choice)
	c.Stats, c.DecayResidue = stats, residue
	s.touch()
	s.log.Debug("year advanced",
		zap.Int("year", s.state.GameYear),
		zap.Int("age", c.Age),
		zap.String("phase", string(phase)),
		zap.Any("decay", decay),
	)
}

// resolve takes choiceID on the current event and records the event as completed. The stat
// delta is returned but not applied. Caller holds mu.
func (s *Session) resolve(choiceID string) (engine.EventResult, bool) {
	ev, ok := s.catalog.Get(s.state.CurrentEventID)
	if !ok || s.spent(ev) {
		return engine.EventResult{}, false
	}
	ch, ok := ev.Choice(choiceID)
	if !ok {
		return engine.EventResult{}, false
	}
	res := engine.ProcessChoice(*s.state.Character, ch, s.state.History)
	if !res.Success {
		return res, false
	}
	s.complete(ev)
	s.state.History = s.state.History.Apply(res.UnlockedEvents, res.LockedEvents)
	s.log.Info("choice taken",
		zap.String("event_id", ev.ID),
		zap.String("choice_id", ch.ID),
		zap.Int("year", s.state.GameYear),
		zap.Strings("unlocked", res.UnlockedEvents),
		zap.Strings("locked", res.LockedEvents),
	)
	return res, true
}

// spent reports whether ev is non-repeatable and already in the history. Caller holds mu.
func (s *Session) spent(ev engine.GameEvent) bool {
	return !ev.Repeatable && s.state.History.Has(ev.ID)
}

// complete appends ev to the history and clears the current event. Caller holds mu.
func (s *Session) complete(ev engine.GameEvent) {
	s.state.History.Completed = append(s.state.History.Completed, ev.ID)
	s.state.Character.CompletedEvents = append([]string(nil), s.state.History.Completed...)
	s.state.CurrentEventID = ""
}

// Choose resolves a choice of the current event without ageing.
func (s *Session) Choose(choiceID string) (engine.EventResult, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return engine.EventResult{}, s.state.clone(), false
	}
	res, ok := s.resolve(choiceID)
	if !ok {
		return res, s.state.clone(), false
	}
	s.state.Character.Stats = s.state.Character.Stats.Apply(res.Delta())
	s.touch()
	return res, s.state.clone(), true
}

// AdvanceYear resolves a choice of the current event and ages the character in the same tick.
// The choice delta and the year's decay are summed before the single clamp. With no current
// event and an empty choiceID it behaves like AgeCharacter.
func (s *Session) AdvanceYear(choiceID string) (engine.EventResult, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return engine.EventResult{}, s.state.clone(), false
	}
	if s.state.CurrentEventID == "" && choiceID == "" {
		s.tick(nil)
		return engine.EventResult{Success: true}, s.state.clone(), true
	}
	res, ok := s.resolve(choiceID)
	if !ok {
		return res, s.state.clone(), false
	}
	s.tick(res.Delta())
	return res, s.state.clone(), true
}

// PerformAction applies a yearly action by id.
func (s *Session) PerformAction(actionID string) ([]engine.StatChange, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return nil, s.state.clone(), false
	}
	a, ok := engine.ActionByID(actionID)
	if !ok {
		return nil, s.state.clone(), false
	}
	c := s.state.Character
	if allowed, reason := engine.CanPerform(*c, a); !allowed {
		s.log.Debug("action refused", zap.String("action_id", a.ID), zap.String("reason", reason))
		return nil, s.state.clone(), false
	}
	changes := a.Effect.Changes(a.Title, c.Age)
	c.Stats = c.Stats.Apply(a.Effect)
	s.touch()
	return changes, s.state.clone(), true
}

// SetCurrentEvent points the session at an event in the catalog. An empty id clears it. A
// non-repeatable event that was already completed is refused.
func (s *Session) SetCurrentEvent(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return s.state.clone(), false
	}
	if id != "" {
		ev, ok := s.catalog.Get(id)
		if !ok || s.spent(ev) {
			return s.state.clone(), false
		}
	}
	s.state.CurrentEventID = id
	return s.state.clone(), true
}

// CompleteEvent appends id to the history without taking a choice. A non-repeatable event that
// is already in the history is refused.
func (s *Session) CompleteEvent(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return s.state.clone(), false
	}
	ev, ok := s.catalog.Get(id)
	if !ok {
		return s.state.clone(), false
	}
	if s.spent(ev) {
		return s.state.clone(), false
	}
	s.complete(ev)
	return s.state.clone(), true
}

// NextEvent returns the pending event, or rolls for a new one: first the yearly event chance,
// then a rarity-weighted draw among the eligible events.
func (s *Session) NextEvent() (engine.GameEvent, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active() {
		return engine.GameEvent{}, s.state.clone(), false
	}
	if id := s.state.CurrentEventID; id != "" {
		if ev, ok := s.catalog.Get(id); ok && !s.spent(ev) {
			return ev, s.state.clone(), true
		}
		s.state.CurrentEventID = ""
	}
	c := s.state.Character
	chance := engine.EventProbability(engine.BaseEventChance(s.state.Settings.Difficulty), c.Stats, c.Phase())
	if s.src.Float64() >= chance {
		return engine.GameEvent{}, s.state.clone(), false
	}
	avail := engine.AvailableEvents(*c, s.catalog.Events(), s.state.History)
	ev, ok := engine.SelectRandomEvent(avail, s.src)
	if !ok {
		return engine.GameEvent{}, s.state.clone(), false
	}
	s.state.CurrentEventID = ev.ID
	s.log.Debug("event drawn", zap.String("event_id", ev.ID), zap.Int("candidates", len(avail)), zap.Float64("chance", chance))
	return ev, s.state.clone(), true
}

// CheckEnd runs the end-of-life check against the current character.
func (s *Session) CheckEnd() engine.EndCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Character == nil {
		return engine.EndCheck{}
	}
	res := engine.ShouldGameEnd(*s.state.Character, s.src)
	if res.Ended {
		s.log.Info("life ended",
			zap.String("reason", string(res.Reason)),
			zap.Int("age", s.state.Character.Age),
			zap.Int("score", engine.CharacterScore(s.state.Character.Stats, s.state.Character.Age, s.state.History.Completed)),
		)
	}
	return res
}

// ResetGame clears the life and returns to NotStarted. Settings and persisted storage are kept.
func (s *Session) ResetGame() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Settings: s.state.Settings}
	s.savedYear = 0
	return s.state.clone()
}

// ToggleSound flips the sound preference.
func (s *Session) ToggleSound() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.SoundEnabled = !s.state.Settings.SoundEnabled
	return s.state.clone()
}

// ToggleMusic flips the music preference.
func (s *Session) ToggleMusic() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.MusicEnabled = !s.state.Settings.MusicEnabled
	return s.state.clone()
}

// UpdateSettings replaces the preferences. Unknown difficulty or language fall back to defaults.
func (s *Session) UpdateSettings(st Settings) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = st.normalized()
	return s.state.clone()
}
