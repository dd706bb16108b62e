package stats

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// EnsureSchema applies the embedded migrations for the store's dialect.
// Running it against an up-to-date database is a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return persistErr("ensure schema", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+s.dialect)
	if err != nil {
		return persistErr("ensure schema", fmt.Errorf("failed to read migrations: %w", err))
	}
	// m.Close would close the shared *sql.DB, so the source and the migration
	// connection are released individually.
	defer src.Close()

	var driver database.Driver
	switch s.dialect {
	case dialectPostgres:
		conn, cerr := s.db.Conn(ctx)
		if cerr != nil {
			return persistErr("ensure schema", fmt.Errorf("failed to reserve connection: %w", cerr))
		}
		defer conn.Close()
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(s.db.DB, &sqlite.Config{})
	}
	if err != nil {
		return persistErr("ensure schema", fmt.Errorf("failed to open migration driver: %w", err))
	}

	m, err := migrate.NewWithInstance("iofs", src, s.dialect, driver)
	if err != nil {
		return persistErr("ensure schema", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return persistErr("ensure schema", fmt.Errorf("failed to apply migrations: %w", err))
	}

	version, _, _ := m.Version()
	s.logger.Debug("schema ready", "version", version)
	return nil
}
