package service

import (
	"context"
	"database/sql"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
	txcontext "ballotbox/pkg/platform/tx"
)

const defaultCascadeTxTimeout = 10 * time.Second

// SQLTx brackets cascade deletes in one database transaction so an election
// never loses its ballots without also losing its parties and tallies.
type SQLTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLTx(db *sql.DB) *SQLTx {
	return &SQLTx{db: db, timeout: defaultCascadeTxTimeout}
}

func (t *SQLTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	dbTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, dbTx)); err != nil {
		return err
	}
	return dbTx.Commit()
}

var _ StoreTx = (*SQLTx)(nil)
