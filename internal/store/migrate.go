package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pkgerrors "github.com/pkg/errors"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator handles DB schema migrations using golang-migrate.
type Migrator struct {
	dsn     string
	backend string
}

func NewMigrator(dsn string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	backend := backendFor(dsn)
	if backend != backendPostgres && backend != backendSQLite {
		return nil, fmt.Errorf("no migrations for DSN %q", dsn)
	}
	return &Migrator{dsn: dsn, backend: backend}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Up() })
}

func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, step func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mig, closer, err := m.migrateInstance()
	if err != nil {
		return err
	}
	defer closer()
	if err := step(mig); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return pkgerrors.Wrapf(err, "migrate %s", m.backend)
	}
	return nil
}

func (m *Migrator) migrateInstance() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations/"+m.backend)
	if err != nil {
		return nil, func() {}, pkgerrors.Wrap(err, "open embedded migrations")
	}
	mig, err := migrate.NewWithSourceInstance("iofs", src, m.migrateURL())
	if err != nil {
		return nil, func() {}, pkgerrors.Wrap(err, "init migrate")
	}
	return mig, func() { _, _ = mig.Close() }, nil
}

// migrateURL maps our DSN onto the scheme golang-migrate registers for the backend.
func (m *Migrator) migrateURL() string {
	if m.backend == backendSQLite {
		return "sqlite://" + sqlitePath(m.dsn)
	}
	return m.dsn
}
