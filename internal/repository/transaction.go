package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

// TransactionRepository is the wallet ledger. Rows are never updated.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, bid_id, type, direction, amount, previous_amount,
	current_amount, stage, reversal_of, description, created_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var tx model.Transaction
	var direction string
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.BidID,
		&tx.Type,
		&direction,
		&tx.Amount,
		&tx.PreviousAmount,
		&tx.CurrentAmount,
		&tx.Stage,
		&tx.ReversalOf,
		&tx.Description,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Direction = model.Direction(direction)
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]model.Transaction, error) {
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

// insertTransactionQuery builds the insert used by Create and CreateReversal.
// suffix goes between VALUES and RETURNING.
func insertTransactionQuery(suffix string) string {
	return `
		INSERT INTO transactions (user_id, bid_id, type, direction, amount, previous_amount,
			current_amount, stage, reversal_of, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		` + suffix + `
		RETURNING ` + transactionColumns
}

func transactionArgs(tx *model.Transaction) []any {
	return []any{
		tx.UserID,
		tx.BidID,
		tx.Type,
		string(tx.Direction),
		tx.Amount,
		tx.PreviousAmount,
		tx.CurrentAmount,
		tx.Stage,
		tx.ReversalOf,
		tx.Description,
	}
}

// Create appends a ledger row.
func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	created, err := scanTransaction(r.db.QueryRow(ctx, insertTransactionQuery(""), transactionArgs(tx)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

// CreateReversal appends a reversal row. The unique reversal_of column makes
// a second reversal of the same transaction a no-op reported as
// service.ErrAlreadyReversed.
func (r *TransactionRepository) CreateReversal(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	if tx.ReversalOf == nil {
		return nil, fmt.Errorf("reversal has no reversal_of")
	}
	query := insertTransactionQuery(`ON CONFLICT (reversal_of) DO NOTHING`)

	created, err := scanTransaction(r.db.QueryRow(ctx, query, transactionArgs(tx)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrAlreadyReversed
		}
		return nil, fmt.Errorf("failed to create reversal: %w", err)
	}
	return created, nil
}

// ListUnreversedWins returns the win credits of one game-day stage that
// have not been reversed, oldest first.
func (r *TransactionRepository) ListUnreversedWins(ctx context.Context, gameID int64, day time.Time, stage string) ([]model.Transaction, error) {
	query := `
		SELECT ` + prefixed("t", transactionColumns) + `
		FROM transactions t
		JOIN bids b ON b.id = t.bid_id
		WHERE t.type = $1
		  AND t.stage = $2
		  AND b.game_id = $3
		  AND b.result_declare_date = $4
		  AND NOT EXISTS (SELECT 1 FROM transactions rv WHERE rv.reversal_of = t.id)
		ORDER BY t.id
	`

	rows, err := r.db.Query(ctx, query, model.TxTypeWin, stage, gameID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list wins: %w", err)
	}
	return collectTransactions(rows)
}

// ListByUser returns a user's ledger, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collectTransactions(rows)
}
