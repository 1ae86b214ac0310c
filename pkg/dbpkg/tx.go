package dbpkg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// WithTx runs fn inside a transaction and commits it when fn succeeds.
//
// Errors without a kind and failures to begin or commit are reported as
// errorspkg.ErrTransient: the transaction was rolled back and may be retried.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrTransient
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(tx); err != nil {
		if errorspkg.KindOf(err) == errorspkg.KindInternal {
			return errorspkg.ErrTransient
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrTransient
	}

	return nil
}
