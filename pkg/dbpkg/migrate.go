package dbpkg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source
	"github.com/rs/zerolog"
)

// Direction selects which way migrations are applied.
type Direction string

// Supported migration directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the migrations found at sourceURL (e.g. file://db/migration) to db.
func Migrate(db *sql.DB, sourceURL string, direction Direction, logger zerolog.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info().Msg("no new migrations")
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if errors.As(err, &dirtyErr) {
		return fmt.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
	}

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info().Str("direction", string(direction)).Msg("migrations applied")

	return nil
}
