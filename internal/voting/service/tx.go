package service

import (
	"context"
	"database/sql"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
	txcontext "ballotbox/pkg/platform/tx"
)

const defaultVoteTxTimeout = 5 * time.Second

// SQLTx brackets the ledger write and tally increment in one database
// transaction. A crash or cancellation between the two steps rolls both
// back: no incremented tally without a ballot, no ballot without its
// increment.
type SQLTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLTx(db *sql.DB) *SQLTx {
	return &SQLTx{db: db, timeout: defaultVoteTxTimeout}
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
