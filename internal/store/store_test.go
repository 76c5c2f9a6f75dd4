package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/DaanHessen/lifeline/internal/engine"
	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/util"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "lifeline.db")
	db, err := OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func backends(t *testing.T) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemory(),
		"sqlite": openTestSQLite(t),
	}
}

func playedSession(t *testing.T, st session.Store) *session.Session {
	t.Helper()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := session.New(
		session.WithStore(st, "slot-1"),
		session.WithClock(func() time.Time { return now }),
		session.WithSource(engine.FixedSource(0)),
	)
	s.StartNewGame(engine.NewCharacter("Sam", engine.UniformStats(55), now))
	for i := 0; i < 5; i++ {
		if _, _, ok := s.NextEvent(); ok {
			ev, _ := s.CurrentEvent()
			s.AdvanceYear(ev.Choices[0].ID)
			continue
		}
		s.AgeCharacter()
	}
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := playedSession(t, b)
			want := s.State()
			if err := s.SaveGame(ctx); err != nil {
				t.Fatalf("save: %v", err)
			}
			// a second save must overwrite, not duplicate
			if err := s.SaveGame(ctx); err != nil {
				t.Fatalf("second save: %v", err)
			}
			fresh := session.New(session.WithStore(b, "slot-1"))
			got, err := fresh.LoadGame(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.GameYear != want.GameYear || got.Character.Age != want.Character.Age {
				t.Fatalf("year/age mismatch: %d/%d vs %d/%d", got.GameYear, got.Character.Age, want.GameYear, want.Character.Age)
			}
			if got.Character.ID != want.Character.ID || got.Character.Stats != want.Character.Stats {
				t.Fatalf("character mismatch:\n got %+v\nwant %+v", got.Character, want.Character)
			}
			if len(got.History.Completed) != len(want.History.Completed) {
				t.Fatalf("history mismatch: %v vs %v", got.History.Completed, want.History.Completed)
			}
			for i := range want.History.Completed {
				if got.History.Completed[i] != want.History.Completed[i] {
					t.Fatalf("history order mismatch: %v vs %v", got.History.Completed, want.History.Completed)
				}
			}
		})
	}
}

func TestLoadMissingKey(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := b.Load(context.Background(), "nobody")
			if err != nil || found {
				t.Fatalf("expected not found, got found=%v err=%v", found, err)
			}
		})
	}
}

func TestSQLiteCorruptPayload(t *testing.T) {
	db := openTestSQLite(t)
	ctx := context.Background()
	if _, err := db.db.ExecContext(ctx, `INSERT INTO saves (save_key, payload, game_year, saved_at) VALUES ('bad', '{"character":{"age":-3}}', 0, 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := session.New(session.WithStore(db, "bad"))
	st, err := s.LoadGame(ctx)
	if !errors.Is(err, session.ErrCorruptSnapshot) {
		t.Fatalf("expected corrupt snapshot, got %v", err)
	}
	if st.Status() != session.StatusNotStarted {
		t.Fatalf("corrupt save produced a game: %+v", st)
	}
}

func TestArchiveLivesOrdered(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, score := range []int{300, 900, 600} {
				id, err := b.ArchiveLife(ctx, LifeRecord{
					CharacterID: uuid.New(),
					Name:        "life",
					Age:         70 + i,
					Score:       score,
					Reason:      string(engine.EndOldAge),
					EndedAt:     time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
				})
				if err != nil || id == uuid.Nil {
					t.Fatalf("archive: %v", err)
				}
			}
			top, err := b.TopLives(ctx, 2)
			if err != nil {
				t.Fatalf("top: %v", err)
			}
			if len(top) != 2 || top[0].Score != 900 || top[1].Score != 600 {
				t.Fatalf("unexpected order: %+v", top)
			}
			all, _ := b.TopLives(ctx, 0)
			if len(all) != 3 {
				t.Fatalf("expected 3 lives, got %d", len(all))
			}
		})
	}
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, util.Config{DSN: "memory://"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := b.(*Memory); !ok {
		t.Fatalf("expected memory backend, got %T", b)
	}
	b, err = Open(ctx, util.Config{DSN: "sqlite://" + filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*SQLite); !ok {
		t.Fatalf("expected sqlite backend, got %T", b)
	}
	if _, err := Open(ctx, util.Config{DSN: "mysql://nope"}); err == nil {
		t.Fatalf("expected error for unsupported dsn")
	}
	if _, err := Open(ctx, util.Config{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestMigratorRejectsUnknownBackend(t *testing.T) {
	if _, err := NewMigrator("memory://"); err == nil {
		t.Fatalf("expected error for memory backend")
	}
	if _, err := NewMigrator(""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestMigratorUpIsIdempotent(t *testing.T) {
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "m.db")
	m, err := NewMigrator(dsn)
	if err != nil {
		t.Fatalf("new migrator: %v", err)
	}
	ctx := context.Background()
	if err := m.Up(ctx); err != nil {
		t.Fatalf("first up: %v", err)
	}
	if err := m.Up(ctx); !errors.Is(err, ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if err := m.Down(ctx); err != nil {
		t.Fatalf("down: %v", err)
	}
}
