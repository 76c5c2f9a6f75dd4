package store

import (
	"context"
	"database/sql"
	errs "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/DaanHessen/lifeline/internal/session"
)

// SQLite persists to a single local file.
type SQLite struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// OpenSQLite migrates and opens the database file named by dsn (sqlite://path or file:path).
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	path := sqlitePath(dsn)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	mig, err := NewMigrator("sqlite://" + path)
	if err != nil {
		return nil, err
	}
	if err := mig.Up(ctx); err != nil && !errs.Is(err, ErrNoChange) {
		return nil, errors.Wrap(err, "run migrations")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context, key string) (session.Snapshot, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM saves WHERE save_key = ?`, key).Scan(&payload)
	if errs.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, errors.Wrap(err, "load save")
	}
	snap, err := session.DecodeSnapshot([]byte(payload))
	if err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SQLite) Save(ctx context.Context, key string, snap session.Snapshot) error {
	b, err := session.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	var charID any
	if id := characterUUID(snap); id != uuid.Nil {
		charID = id.String()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (save_key, character_id, payload, game_year, saved_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (save_key) DO UPDATE SET
		   character_id = excluded.character_id,
		   payload = excluded.payload,
		   game_year = excluded.game_year,
		   saved_at = excluded.saved_at`,
		key, charID, string(b), snap.GameYear, toMillis(snap.SavedAt),
	)
	return wrap(err, "save snapshot")
}

func (s *SQLite) ArchiveLife(ctx context.Context, rec LifeRecord) (uuid.UUID, error) {
	rec = prepareLife(rec)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lives (id, character_id, name, age, score, reason, events, ended_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CharacterID.String(), rec.Name, rec.Age, rec.Score, rec.Reason, rec.Events, toMillis(rec.EndedAt),
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "archive life")
	}
	return rec.ID, nil
}

func (s *SQLite) TopLives(ctx context.Context, limit int) ([]LifeRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, character_id, name, age, score, reason, events, ended_at
		 FROM lives ORDER BY score DESC, ended_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list lives")
	}
	defer rows.Close()
	var out []LifeRecord
	for rows.Next() {
		var (
			rec          LifeRecord
			id, charID   string
			endedAtMilli int64
		)
		if err := rows.Scan(&id, &charID, &rec.Name, &rec.Age, &rec.Score, &rec.Reason, &rec.Events, &endedAtMilli); err != nil {
			return nil, errors.Wrap(err, "scan life")
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "life id %q", id)
		}
		rec.CharacterID, _ = uuid.Parse(charID)
		rec.EndedAt = fromMillis(endedAtMilli)
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate lives")
}
