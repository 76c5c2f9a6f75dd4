// Package store persists session snapshots and finished lives. Postgres goes through gorm, SQLite
// through database/sql on the pure Go modernc driver, and an in-memory backend serves tests and
// throwaway simulations.
package store

import (
	"context"
	errs "errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/util"
)

var ErrNoChange = errs.New("no change")

const (
	backendPostgres = "postgres"
	backendSQLite   = "sqlite"
	backendMemory   = "memory"
)

// LifeRecord is the archive card of a finished life.
type LifeRecord struct {
	ID          uuid.UUID
	CharacterID uuid.UUID
	Name        string
	Age         int
	Score       int
	Reason      string
	Events      int
	EndedAt     time.Time
}

// Backend is everything the game needs from persistence.
type Backend interface {
	session.Store
	// ArchiveLife records a finished life. A zero ID is assigned.
	ArchiveLife(ctx context.Context, rec LifeRecord) (uuid.UUID, error)
	// TopLives lists archived lives by descending score.
	TopLives(ctx context.Context, limit int) ([]LifeRecord, error)
	Close() error
}

// Open picks the backend from the DSN scheme and brings its schema up to date.
func Open(ctx context.Context, cfg util.Config) (Backend, error) {
	if cfg.DSN == "" {
		return nil, errors.New("missing DSN")
	}
	switch backendFor(cfg.DSN) {
	case backendMemory:
		return NewMemory(), nil
	case backendSQLite:
		return OpenSQLite(ctx, cfg.DSN)
	case backendPostgres:
		mig, err := NewMigrator(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := mig.Up(ctx); err != nil && !errs.Is(err, ErrNoChange) {
			return nil, err
		}
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported DSN %q", cfg.DSN)
	}
}

func backendFor(dsn string) string { return util.Config{DSN: dsn}.Backend() }

// sqlitePath strips the scheme from a sqlite DSN.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "sqlite://")
	p = strings.TrimPrefix(p, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

// characterUUID parses a character id. Ids that are not uuids map to uuid.Nil.
func characterUUID(snap session.Snapshot) uuid.UUID {
	if snap.Character == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(snap.Character.ID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func prepareLife(rec LifeRecord) LifeRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.EndedAt.IsZero() {
		rec.EndedAt = time.Now()
	}
	rec.EndedAt = rec.EndedAt.UTC()
	return rec
}

// Memory keeps everything in process. Snapshots are stored encoded so a round trip exercises
// the same JSON path as the SQL backends.
type Memory struct {
	mu    sync.Mutex
	saves map[string][]byte
	lives []LifeRecord
}

func NewMemory() *Memory { return &Memory{saves: map[string][]byte{}} }

func (m *Memory) Load(ctx context.Context, key string) (session.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return session.Snapshot{}, false, err
	}
	m.mu.Lock()
	b, ok := m.saves[key]
	m.mu.Unlock()
	if !ok {
		return session.Snapshot{}, false, nil
	}
	snap, err := session.DecodeSnapshot(b)
	if err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (m *Memory) Save(ctx context.Context, key string, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := session.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.saves[key] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) ArchiveLife(ctx context.Context, rec LifeRecord) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	rec = prepareLife(rec)
	m.mu.Lock()
	m.lives = append(m.lives, rec)
	m.mu.Unlock()
	return rec.ID, nil
}

func (m *Memory) TopLives(ctx context.Context, limit int) ([]LifeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	out := append([]LifeRecord(nil), m.lives...)
	m.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
