package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payshield/payshield/internal/risk"
	"github.com/payshield/payshield/internal/service"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// query run either standalone or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres-backed data layer. It implements service.Store;
// all port methods live on Store itself, scoped by the active querier.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// NewStore creates a store wrapper around a pgx connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Accounts() service.AccountStore         { return s }
func (s *Store) Transactions() service.TransactionStore { return s }
func (s *Store) Alerts() service.AlertStore             { return s }
func (s *Store) Ledger() risk.LedgerReader              { return s }
func (s *Store) Blacklist() service.BlacklistChecker    { return s }

// RunInTx executes fn within a database transaction. The store handed to
// fn routes every query through that transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(st service.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
