// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// Postgres is a disposable database with the schema migrated up.
type Postgres struct {
	DSN       string
	container *postgres.PostgresContainer
}

// StartPostgres runs a postgres container and applies all migrations.
//
// It is meant to be called once per package from TestMain.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("lifemanager"),
		postgres.WithUsername("root"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.Run: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	db, err := dbpkg.Setup("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbpkg.Setup: %w", err)
	}
	defer db.Close()

	if err := dbpkg.Migrate(db, MigrationURL(), dbpkg.Up, zerolog.Nop()); err != nil {
		return nil, fmt.Errorf("dbpkg.Migrate: %w", err)
	}

	return &Postgres{DSN: dsn, container: container}, nil
}

// Terminate stops the container.
func (p *Postgres) Terminate(ctx context.Context) error {
	return p.container.Terminate(ctx)
}

// MigrationURL points at db/migration of the module regardless of the test's working directory.
func MigrationURL() string {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "db", "migration")

	return "file://" + filepath.ToSlash(dir)
}

// RunMain starts postgres, runs the package tests and exits.
func RunMain(m *testing.M, dsn *string) {
	ctx := context.Background()

	pg, err := StartPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot start postgres: %v\n", err)
		os.Exit(1)
	}

	*dsn = pg.DSN

	code := m.Run()

	if err := pg.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cannot terminate postgres: %v\n", err)
	}

	os.Exit(code)
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables 
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup("postgres", dsn)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, dsn string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup("postgres", dsn)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
