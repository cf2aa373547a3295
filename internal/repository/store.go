// Package repository provides the PostgreSQL implementations of the service
// repositories. Every repository runs on a DBTX, so the same code serves the
// pool and an open transaction.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"matka-bot/internal/pkg/db"
	"matka-bot/internal/service"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is the unit of work over all repositories.
type Store struct {
	pool *pgxpool.Pool // nil inside a transaction
	db   DBTX
}

var _ service.Store = (*Store)(nil)

// NewStore creates a Store on pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() service.UserRepository { return &UserRepository{db: s.db} }

func (s *Store) Transactions() service.TransactionRepository {
	return &TransactionRepository{db: s.db}
}

func (s *Store) Bids() service.BidRepository { return &BidRepository{db: s.db} }

func (s *Store) Results() service.ResultRepository { return &ResultRepository{db: s.db} }

func (s *Store) Rates() service.RateRepository { return &RateRepository{db: s.db} }

func (s *Store) Games() service.GameRepository { return &GameRepository{db: s.db} }

// WithTx runs fn in one transaction. Called on a Store that is already in a
// transaction, fn joins it.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{db: tx})
	})
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
