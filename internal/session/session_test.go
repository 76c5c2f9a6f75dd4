package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DaanHessen/lifeline/internal/engine"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	records map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore { return &memStore{records: map[string][]byte{}} }

func (m *memStore) Load(ctx context.Context, key string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Snapshot{}, false, m.loadErr
	}
	b, ok := m.records[key]
	if !ok {
		return Snapshot{}, false, nil
	}
	s, err := DecodeSnapshot(b)
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

func (m *memStore) Save(ctx context.Context, key string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	m.records[key] = b
	m.saves++
	return nil
}

func testCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	events := []engine.GameEvent{
		{
			ID: "course", Title: "Night course", Category: engine.CategoryEducation,
			AgeRange: engine.AgeRange{Min: 0, Max: 120}, Rarity: engine.RarityCommon,
			Choices: []engine.GameChoice{
				{ID: "enroll", Text: "Enroll", Effect: engine.Delta{engine.StatIntelligence: 10, engine.StatWealth: -5},
					Consequences: &engine.Consequences{UnlockEvents: []string{"diploma"}}},
				{ID: "skip", Text: "Skip it", Effect: engine.Delta{engine.StatHappiness: 1}},
				{ID: "sponsor", Text: "Sponsor a class", Effect: engine.Delta{engine.StatSocial: 5},
					Requirements: &engine.Requirements{MinStats: engine.Delta{engine.StatWealth: 95}}},
			},
		},
		{
			ID: "diploma", Title: "Diploma", Category: engine.CategoryEducation, Hidden: true,
			AgeRange: engine.AgeRange{Min: 0, Max: 120}, Rarity: engine.RarityRare,
			Choices: []engine.GameChoice{{ID: "frame", Text: "Frame it", Effect: engine.Delta{engine.StatHappiness: 3}}},
		},
		{
			ID: "jog", Title: "Morning jog", Category: engine.CategoryHealth, Repeatable: true,
			AgeRange: engine.AgeRange{Min: 0, Max: 120}, Rarity: engine.RarityCommon,
			Choices: []engine.GameChoice{{ID: "go", Text: "Go", Effect: engine.Delta{engine.StatHealth: 2}}},
		},
	}
	cat, err := engine.NewCatalog(events)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithCatalog(testCatalog(t)), WithClock(func() time.Time { return fixedNow }), WithSource(engine.FixedSource(0))}
	return New(append(base, opts...)...)
}

func startAt(s *Session, age, v int) State {
	c := engine.NewCharacter("Robin", engine.UniformStats(v), fixedNow)
	c.Age = age
	return s.StartNewGame(c)
}

func TestChoiceThenAgeScenario(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 18, 50)
	if _, ok := s.SetCurrentEvent("course"); !ok {
		t.Fatalf("set current event refused")
	}
	res, st, ok := s.Choose("enroll")
	if !ok || !res.Success {
		t.Fatalf("choice refused: %+v", res)
	}
	c := st.Character
	if c.Stats.Intelligence != 60 || c.Stats.Wealth != 45 {
		t.Fatalf("unexpected stats: %+v", c.Stats)
	}
	if c.Stats.Health != 50 || c.Stats.Happiness != 50 || c.Stats.Social != 50 {
		t.Fatalf("untouched stats changed: %+v", c.Stats)
	}
	if st.CurrentEventID != "" || !st.History.Has("course") || !st.History.IsUnlocked("diploma") {
		t.Fatalf("history not updated: %+v", st)
	}
	st, ok = s.AgeCharacter()
	if !ok || st.Character.Age != 19 || st.GameYear != 1 {
		t.Fatalf("ageing failed: age=%d year=%d", st.Character.Age, st.GameYear)
	}
}

func TestNoCharacterIsNoOp(t *testing.T) {
	s := newTestSession(t)
	before := s.State()
	if _, ok := s.UpdateCharacterStats(engine.Delta{engine.StatHealth: 5}); ok {
		t.Fatalf("stat update applied without character")
	}
	if _, ok := s.AgeCharacter(); ok {
		t.Fatalf("ageing applied without character")
	}
	if _, ok := s.PauseGame(); ok {
		t.Fatalf("pause applied without character")
	}
	if _, ok := s.CompleteEvent("jog"); ok {
		t.Fatalf("event completed without character")
	}
	after := s.State()
	if after.Status() != StatusNotStarted || after.GameYear != before.GameYear || after.Character != nil {
		t.Fatalf("state changed: %+v", after)
	}
}

func TestPausedRefusesMutations(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	st, ok := s.PauseGame()
	if !ok || st.Status() != StatusPaused {
		t.Fatalf("pause failed: %+v", st)
	}
	if _, ok := s.UpdateCharacterStats(engine.Delta{engine.StatHealth: -10}); ok {
		t.Fatalf("mutation applied while paused")
	}
	st, _ = s.ResumeGame()
	if st.Status() != StatusActive || st.Character.Stats.Health != 50 {
		t.Fatalf("resume failed or state changed: %+v", st)
	}
}

func TestUpdateCharacterStatsClamps(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 95)
	st, ok := s.UpdateCharacterStats(engine.Delta{engine.StatHealth: 50, engine.StatWealth: -200, "luck": 3})
	if !ok || st.Character.Stats.Health != 100 || st.Character.Stats.Wealth != 0 {
		t.Fatalf("unexpected stats: %+v", st.Character.Stats)
	}
}

func TestStateIsDetached(t *testing.T) {
	s := newTestSession(t)
	st := startAt(s, 30, 50)
	st.Character.Stats.Health = 1
	st.History.Completed = append(st.History.Completed, "x")
	again := s.State()
	if again.Character.Stats.Health != 50 || len(again.History.Completed) != 0 {
		t.Fatalf("state copy leaked into session: %+v", again)
	}
}

func TestAdvanceYearSumsBeforeClamp(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 64, 100)
	s.SetCurrentEvent("jog")
	res, st, ok := s.AdvanceYear("go")
	if !ok || !res.Success {
		t.Fatalf("advance refused")
	}
	// senior decay -2 health and the +2 choice cancel out
	if st.Character.Stats.Health != 100 {
		t.Fatalf("expected health 100, got %d", st.Character.Stats.Health)
	}
	if st.Character.Age != 65 || st.GameYear != 1 {
		t.Fatalf("unexpected age/year: %d/%d", st.Character.Age, st.GameYear)
	}
	if st.Character.DecayResidue.Happiness != -5 {
		t.Fatalf("senior happiness decay not carried: %+v", st.Character.DecayResidue)
	}
}

func TestAdvanceYearWithoutEvent(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 40, 50)
	_, st, ok := s.AdvanceYear("")
	if !ok || st.Character.Age != 41 || st.Character.Stats.Health != 49 {
		t.Fatalf("plain tick failed: %+v", st.Character)
	}
	if _, _, ok := s.AdvanceYear("enroll"); ok {
		t.Fatalf("choice accepted without current event")
	}
}

func TestChooseUnmetRequirement(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	s.SetCurrentEvent("course")
	res, st, ok := s.Choose("sponsor")
	if ok || res.Success {
		t.Fatalf("choice with unmet requirement accepted")
	}
	if st.CurrentEventID != "course" || st.History.Has("course") {
		t.Fatalf("state changed on refused choice: %+v", st)
	}
}

func TestCompleteEventRepeatability(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	if _, ok := s.CompleteEvent("course"); !ok {
		t.Fatalf("first completion refused")
	}
	if _, ok := s.CompleteEvent("course"); ok {
		t.Fatalf("non-repeatable completed twice")
	}
	s.CompleteEvent("jog")
	st, ok := s.CompleteEvent("jog")
	if !ok || len(st.History.Completed) != 3 {
		t.Fatalf("repeatable event refused: %+v", st.History)
	}
	if len(st.Character.CompletedEvents) != 3 {
		t.Fatalf("character history not mirrored: %+v", st.Character.CompletedEvents)
	}
	if _, ok := s.CompleteEvent("ghost"); ok {
		t.Fatalf("unknown event completed")
	}
}

func TestNonRepeatableEventResolvesOnce(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	s.SetCurrentEvent("course")
	if _, _, ok := s.Choose("skip"); !ok {
		t.Fatalf("first choice refused")
	}
	if _, ok := s.SetCurrentEvent("course"); ok {
		t.Fatalf("completed non-repeatable event set again")
	}
	res, st, ok := s.Choose("skip")
	if ok || res.Success {
		t.Fatalf("choice resolved without a current event")
	}
	if st.Character.Stats.Happiness != 51 || len(st.History.Completed) != 1 {
		t.Fatalf("second resolution changed state: %+v %+v", st.Character.Stats, st.History)
	}

	// completing the pending event out of band clears it and it cannot be chosen afterwards
	s2 := newTestSession(t)
	startAt(s2, 30, 50)
	s2.SetCurrentEvent("course")
	s2.CompleteEvent("course")
	if _, st, ok := s2.Choose("enroll"); ok || st.Character.Stats.Intelligence != 50 || len(st.History.Completed) != 1 {
		t.Fatalf("spent pending event resolved: ok=%v %+v", ok, st.History)
	}
	ev, st, ok := s2.NextEvent()
	if !ok || ev.ID != "jog" || st.CurrentEventID != "jog" {
		t.Fatalf("spent pending event should be replaced by a fresh draw, got %q", ev.ID)
	}

	// repeatable events resolve every time
	s.SetCurrentEvent("jog")
	s.Choose("go")
	if _, ok := s.SetCurrentEvent("jog"); !ok {
		t.Fatalf("repeatable event refused")
	}
	if _, st, ok := s.Choose("go"); !ok || st.Character.Stats.Health != 54 {
		t.Fatalf("repeatable event not resolved twice: %+v", st.Character.Stats)
	}
}

func TestHiddenEventUnlockedByChoice(t *testing.T) {
	s := newTestSession(t)
	st := startAt(s, 30, 50)
	avail := engine.AvailableEvents(*st.Character, s.Catalog().Events(), st.History)
	for _, ev := range avail {
		if ev.ID == "diploma" {
			t.Fatalf("hidden event offered before unlock")
		}
	}
	s.SetCurrentEvent("course")
	_, st, _ = s.Choose("enroll")
	found := false
	for _, ev := range engine.AvailableEvents(*st.Character, s.Catalog().Events(), st.History) {
		if ev.ID == "diploma" {
			found = true
		}
		if ev.ID == "course" {
			t.Fatalf("completed non-repeatable event offered again")
		}
	}
	if !found {
		t.Fatalf("unlocked hidden event not offered")
	}
}

func TestNextEvent(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	ev, st, ok := s.NextEvent()
	if !ok || ev.ID != "course" || st.CurrentEventID != "course" {
		t.Fatalf("expected first weighted event, got %q ok=%v", ev.ID, ok)
	}
	again, _, ok := s.NextEvent()
	if !ok || again.ID != "course" {
		t.Fatalf("pending event not returned: %q", again.ID)
	}

	quiet := newTestSession(t, WithSource(engine.FixedSource(0.99)))
	startAt(quiet, 30, 50)
	if _, _, ok := quiet.NextEvent(); ok {
		t.Fatalf("event drawn above the yearly chance")
	}
}

func TestPerformAction(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 50)
	changes, st, ok := s.PerformAction("study_hard")
	if !ok || len(changes) != 2 {
		t.Fatalf("action failed: %+v", changes)
	}
	if st.Character.Stats.Intelligence != 55 || st.Character.Stats.Social != 48 {
		t.Fatalf("unexpected stats: %+v", st.Character.Stats)
	}
	s.UpdateCharacterStats(engine.Delta{engine.StatHealth: -45})
	if _, _, ok := s.PerformAction("work_overtime"); ok {
		t.Fatalf("action allowed with critical health")
	}
	if _, _, ok := s.PerformAction("meditation"); !ok {
		t.Fatalf("rest action refused")
	}
	if _, _, ok := s.PerformAction("nope"); ok {
		t.Fatalf("unknown action accepted")
	}
}

func TestCheckEnd(t *testing.T) {
	s := newTestSession(t)
	if s.CheckEnd().Ended {
		t.Fatalf("ended without character")
	}
	startAt(s, 40, 50)
	if s.CheckEnd().Ended {
		t.Fatalf("40 year old ended")
	}
	s.UpdateCharacterStats(engine.Delta{engine.StatHealth: -100})
	if r := s.CheckEnd(); !r.Ended || r.Reason != engine.EndHealth {
		t.Fatalf("expected health end, got %+v", r)
	}
}

func TestResetKeepsSettings(t *testing.T) {
	s := newTestSession(t)
	s.ToggleSound()
	s.UpdateSettings(Settings{Difficulty: "brutal", Language: engine.LanguageTurkish})
	startAt(s, 30, 50)
	st := s.ResetGame()
	if st.Status() != StatusNotStarted || st.Character != nil || st.GameYear != 0 {
		t.Fatalf("reset left state: %+v", st)
	}
	if st.Settings.Language != engine.LanguageTurkish || st.Settings.Difficulty != engine.DifficultyNormal {
		t.Fatalf("settings not kept or not normalized: %+v", st.Settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	s := newTestSession(t, WithStore(store, "slot"))
	startAt(s, 30, 50)
	s.SetCurrentEvent("course")
	s.AdvanceYear("enroll")
	s.AgeCharacter()
	want := s.State()
	if err := s.SaveGame(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := newTestSession(t, WithStore(store, "slot"))
	got, err := other.LoadGame(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status() != StatusActive || got.GameYear != want.GameYear {
		t.Fatalf("status/year mismatch: %v %d vs %d", got.Status(), got.GameYear, want.GameYear)
	}
	gc, wc := got.Character, want.Character
	if gc.ID != wc.ID || gc.Name != wc.Name || gc.Age != wc.Age || gc.Stats != wc.Stats || gc.DecayResidue != wc.DecayResidue {
		t.Fatalf("character mismatch:\n got %+v\nwant %+v", gc, wc)
	}
	if !gc.CreatedAt.Equal(wc.CreatedAt) {
		t.Fatalf("created at mismatch")
	}
	if len(got.History.Completed) != 1 || got.History.Completed[0] != "course" || !got.History.IsUnlocked("diploma") {
		t.Fatalf("history mismatch: %+v", got.History)
	}
}

func TestLoadMissingIsNotStarted(t *testing.T) {
	s := newTestSession(t, WithStore(newMemStore(), ""))
	startAt(s, 30, 50)
	st, err := s.LoadGame(context.Background())
	if err != nil || st.Status() != StatusNotStarted {
		t.Fatalf("expected empty session, got %v %v", st.Status(), err)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	store := newMemStore()
	store.records[DefaultKey] = []byte(`{"character":{"name":"x","age":30,"stats":{"health":150}},"is_game_started":true}`)
	s := newTestSession(t, WithStore(store, ""))
	st, err := s.LoadGame(context.Background())
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected corrupt snapshot error, got %v", err)
	}
	if st.Status() != StatusNotStarted {
		t.Fatalf("corrupt snapshot loaded: %+v", st)
	}

	store.records[DefaultKey] = []byte(`not json`)
	if _, err := s.LoadGame(context.Background()); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected corrupt snapshot error for bad json, got %v", err)
	}
}

func TestLoadNeverStartedSnapshot(t *testing.T) {
	store := newMemStore()
	c := engine.NewCharacter("Idle", engine.UniformStats(50), fixedNow)
	b, err := EncodeSnapshot(Snapshot{Character: &c, Settings: DefaultSettings(), Version: SnapshotVersion})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	store.records[DefaultKey] = b
	s := newTestSession(t, WithStore(store, ""))
	st, err := s.LoadGame(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Status() != StatusNotStarted || st.Character != nil {
		t.Fatalf("never started life restored: %+v", st)
	}
	if _, ok := s.PauseGame(); ok {
		t.Fatalf("paused a session that never started")
	}
	if _, ok := s.ResumeGame(); ok {
		t.Fatalf("resumed a session that never started")
	}
}

func TestLoadFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("disk gone")
	s := newTestSession(t, WithStore(store, ""))
	startAt(s, 30, 50)
	st, err := s.LoadGame(context.Background())
	if err == nil || st.Status() != StatusNotStarted {
		t.Fatalf("expected error and empty session, got %v %v", st.Status(), err)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("read only")
	s := newTestSession(t, WithStore(store, ""))
	startAt(s, 30, 50)
	if err := s.SaveGame(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if st := s.State(); st.Status() != StatusActive || st.Character.Age != 30 {
		t.Fatalf("state changed by failed save: %+v", st)
	}
}

func TestNoStore(t *testing.T) {
	s := newTestSession(t)
	if err := s.SaveGame(context.Background()); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if _, err := s.LoadGame(context.Background()); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if saved, err := s.Autosave(context.Background()); saved || err != nil {
		t.Fatalf("autosave without store: %v %v", saved, err)
	}
}

func TestAutosaveEvery(t *testing.T) {
	store := newMemStore()
	s := newTestSession(t, WithStore(store, ""), WithAutosaveEvery(2))
	startAt(s, 30, 50)
	ctx := context.Background()
	s.AgeCharacter()
	if saved, _ := s.Autosave(ctx); saved {
		t.Fatalf("saved after one year")
	}
	s.AgeCharacter()
	if saved, err := s.Autosave(ctx); !saved || err != nil {
		t.Fatalf("expected save after two years: %v %v", saved, err)
	}
	if saved, _ := s.Autosave(ctx); saved {
		t.Fatalf("saved twice in the same year")
	}
	s.UpdateSettings(Settings{AutoSave: false})
	s.AgeCharacter()
	s.AgeCharacter()
	if saved, _ := s.Autosave(ctx); saved {
		t.Fatalf("saved with auto-save off")
	}
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	s := newTestSession(t)
	startAt(s, 30, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.UpdateCharacterStats(engine.Delta{engine.StatHealth: 1})
		}()
	}
	wg.Wait()
	if got := s.State().Character.Stats.Health; got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}
