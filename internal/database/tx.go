package database

import (
	"context"

	"github.com/deppfellow/projects/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Querier is the subset of pgx.Tx used by the statement helpers.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReadSnapshot makes every statement of a transaction read from the
// snapshot taken by its first statement. Multi-statement reads use it so a
// delete committed halfway through cannot show up as a row without children.
var ReadSnapshot = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// WithTx runs fn inside a transaction on a connection of its own. Pass
// pgx.TxOptions{} for the server defaults or ReadSnapshot for reads.
//
// The connection is closed on every exit path. If fn fails, or commit
// fails, the transaction is rolled back and the error is returned through
// sqlerr.HandleError. A failure to acquire the connection is returned as is
// and no rollback is attempted because no transaction exists yet.
func WithTx(ctx context.Context, provider Connector, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	conn, err := provider.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return sqlerr.HandleError(err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return sqlerr.HandleError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return sqlerr.HandleError(err)
	}

	return nil
}

// InsertReturningID executes an INSERT ending in `RETURNING <pk>` and
// yields the generated key.
//
//	id, err := database.InsertReturningID(ctx, tx,
//		"INSERT INTO category (category_name) VALUES ($1) RETURNING category_id", name)
func InsertReturningID(ctx context.Context, q Querier, sql string, args ...any) (int, error) {
	var id int
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// NullableString binds nil as SQL NULL.
func NullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// NullableInt binds nil as SQL NULL.
func NullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

// NullableDecimal binds an invalid NullDecimal as SQL NULL. Valid values
// are rounded to two fractional digits, matching NUMERIC(7,2).
func NullableDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.Round(2)
}
