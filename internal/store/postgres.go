package store

import (
	"context"
	"database/sql"
	errs "errors"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DaanHessen/lifeline/internal/session"
)

// DB wraps gorm.DB for repositories and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }

// OpenPostgres connects with gorm. The schema is expected to be migrated.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	db := &DB{gorm: gdb, sql: sdb}
	return &Postgres{DB: db, saves: NewSaveRepo(db), lives: NewLifeRepo(db)}, nil
}

type saveRow struct {
	SaveKey     string     `gorm:"column:save_key;primaryKey"`
	CharacterID *uuid.UUID `gorm:"column:character_id;type:uuid"`
	Payload     string     `gorm:"column:payload;type:jsonb"`
	GameYear    int        `gorm:"column:game_year"`
	SavedAt     time.Time  `gorm:"column:saved_at"`
}

func (saveRow) TableName() string { return "saves" }

type lifeRow struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CharacterID uuid.UUID `gorm:"column:character_id;type:uuid"`
	Name        string    `gorm:"column:name"`
	Age         int       `gorm:"column:age"`
	Score       int       `gorm:"column:score"`
	Reason      string    `gorm:"column:reason"`
	Events      int       `gorm:"column:events"`
	EndedAt     time.Time `gorm:"column:ended_at"`
}

func (lifeRow) TableName() string { return "lives" }

// SaveRepo upserts snapshots keyed by save slot.
type SaveRepo struct{ db *DB }

func NewSaveRepo(db *DB) *SaveRepo { return &SaveRepo{db: db} }

func (r *SaveRepo) Load(ctx context.Context, key string) (session.Snapshot, bool, error) {
	var row saveRow
	err := r.db.gorm.WithContext(ctx).Where("save_key = ?", key).Take(&row).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, errors.Wrap(err, "load save")
	}
	snap, err := session.DecodeSnapshot([]byte(row.Payload))
	if err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *SaveRepo) Save(ctx context.Context, key string, snap session.Snapshot) error {
	b, err := session.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	row := saveRow{SaveKey: key, Payload: string(b), GameYear: snap.GameYear, SavedAt: snap.SavedAt}
	if id := characterUUID(snap); id != uuid.Nil {
		row.CharacterID = &id
	}
	err = r.db.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "save_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"character_id", "payload", "game_year", "saved_at"}),
	}).Create(&row).Error
	return wrap(err, "save snapshot")
}

// LifeRepo archives finished lives.
type LifeRepo struct{ db *DB }

func NewLifeRepo(db *DB) *LifeRepo { return &LifeRepo{db: db} }

func (r *LifeRepo) Insert(ctx context.Context, rec LifeRecord) (uuid.UUID, error) {
	rec = prepareLife(rec)
	row := lifeRow(rec)
	if err := r.db.gorm.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, errors.Wrap(err, "archive life")
	}
	return rec.ID, nil
}

func (r *LifeRepo) Top(ctx context.Context, limit int) ([]LifeRecord, error) {
	q := r.db.gorm.WithContext(ctx).Order("score DESC").Order("ended_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []lifeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list lives")
	}
	out := make([]LifeRecord, len(rows))
	for i, row := range rows {
		out[i] = LifeRecord(row)
	}
	return out, nil
}

// Postgres is the gorm-backed Backend.
type Postgres struct {
	*DB
	saves *SaveRepo
	lives *LifeRepo
}

func (p *Postgres) Load(ctx context.Context, key string) (session.Snapshot, bool, error) {
	return p.saves.Load(ctx, key)
}

func (p *Postgres) Save(ctx context.Context, key string, snap session.Snapshot) error {
	return p.saves.Save(ctx, key, snap)
}

func (p *Postgres) ArchiveLife(ctx context.Context, rec LifeRecord) (uuid.UUID, error) {
	return p.lives.Insert(ctx, rec)
}

func (p *Postgres) TopLives(ctx context.Context, limit int) ([]LifeRecord, error) {
	return p.lives.Top(ctx, limit)
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
