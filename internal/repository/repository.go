// Package repository handles all interactions with the database.
//
// It contains raw SQL statements and methods to fetch, persist or update
// records, abstracting SQL away from the service layer. Every method runs
// in its own transaction on its own connection (see database.WithTx).
//
// Absence is a value here, not an error: fetch-by-id reports (nil, false)
// and keyed updates or deletes report false when no row matched. Turning
// that into a not-found error is the service's job.
package repository

import (
	"github.com/deppfellow/projects/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// affectedOne interprets the result of a keyed UPDATE or DELETE.
//
// One row means success, zero means the id did not exist. More than one row
// breaks the primary key invariant; the returned error makes WithTx roll
// the transaction back.
func affectedOne(tag pgconn.CommandTag, entity string, id int) (bool, error) {
	switch rows := tag.RowsAffected(); {
	case rows == 0:
		return false, nil
	case rows == 1:
		return true, nil
	default:
		return false, errs.NewInconsistencyError(entity, id, rows)
	}
}

// roundHours normalizes a decimal to the two fractional digits the
// NUMERIC(7,2) columns store.
func roundHours(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(2))
}

// nonNil keeps the collections of a full fetch non-nil, so an empty
// collection is distinguishable from one that was never loaded.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
