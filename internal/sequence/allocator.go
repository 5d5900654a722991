// Package sequence issues gap-free integers from named counters.
package sequence

import (
	"context"
	"errors"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"gorm.io/gorm"
)

// The upsert is a single statement so concurrent callers never observe the same value.
// Both PostgreSQL and SQLite (>= 3.35) accept this form.
const nextSQL = `INSERT INTO counters (sequence_name, sequence_value, updated_at)
VALUES (?, 1, CURRENT_TIMESTAMP)
ON CONFLICT (sequence_name) DO UPDATE
SET sequence_value = counters.sequence_value + 1, updated_at = CURRENT_TIMESTAMP
RETURNING sequence_value`

var errEmptyName = errors.New("empty_sequence_name")

// Allocator hands out the next value of a named counter.
type Allocator struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// WithTx returns an allocator bound to tx; allocations roll back with it.
func (a *Allocator) WithTx(tx *gorm.DB) *Allocator {
	return &Allocator{db: tx}
}

// Next increments name and returns the new value. The first call on a name returns 1.
func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, apperr.Allocation(name, errEmptyName)
	}
	var value int64
	res := a.db.WithContext(ctx).Raw(nextSQL, name).Scan(&value)
	if res.Error != nil {
		return 0, apperr.Allocation(name, res.Error)
	}
	if value < 1 {
		return 0, apperr.Allocation(name, errors.New("no_row_returned"))
	}
	return value, nil
}
