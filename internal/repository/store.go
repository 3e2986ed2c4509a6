// Package repository is the MySQL persistence gateway.  A single Store
// implements service.Store; its methods are split per table across the
// files of this package.  Lookups that find nothing return sql.ErrNoRows.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/event-booking/internal/service"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs queries against the database or, inside WithTx, against the
// current transaction.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store { return &Store{db: db, q: db} }

var _ service.Store = (*Store)(nil)

// WithTx begins a transaction, hands fn a Store bound to it and commits
// when fn returns nil.  Any error, or a panic, rolls back.  Nested calls
// reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Store{db: s.db, q: tx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func lastID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
