// Package migrator applies the goose migrations embedded in migrations/orderdesk.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

// Migrator runs migrations from one embedded FS. Runs are serialised across
// processes with a PostgreSQL advisory lock, so the API, the worker and
// parallel test binaries can all migrate at startup.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
}

// Open connects to url and prepares the provider. Close releases the connection.
func Open(url string, files fs.FS) (*Migrator, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("migrator: open: %w", err)
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrator: locker: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, files, goose.WithSessionLocker(locker))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrator: provider: %w", err)
	}
	return &Migrator{db: db, provider: provider}, nil
}

// Up applies every pending migration and returns the versions applied.
func (m *Migrator) Up(ctx context.Context) ([]int64, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrator: up: %w", err)
	}
	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions, nil
}

// Down rolls back the latest applied migration.
func (m *Migrator) Down(ctx context.Context) (int64, error) {
	res, err := m.provider.Down(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrator: down: %w", err)
	}
	return res.Source.Version, nil
}

// MigrationStatus is one row of Status.
type MigrationStatus struct {
	Version int64
	Applied bool
}

// Status reports every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrator: status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{Version: s.Source.Version, Applied: s.State == goose.StateApplied})
	}
	return out, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}

// RunMigrations opens url, applies pending migrations and closes the connection.
func RunMigrations(ctx context.Context, url string, files fs.FS) error {
	m, err := Open(url, files)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	_, err = m.Up(ctx)
	return err
}
