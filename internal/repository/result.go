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

// ResultRepository handles declared game results.
type ResultRepository struct {
	db DBTX
}

// NewResultRepository creates a new ResultRepository instance.
func NewResultRepository(db DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `id, game_id, game_category, result_declare_date, open_result_number,
	close_result_number, game_result_number, created_at, updated_at`

func scanResult(row pgx.Row) (*model.GameResult, error) {
	var (
		res      model.GameResult
		category string
	)
	err := row.Scan(
		&res.ID,
		&res.GameID,
		&category,
		&res.ResultDeclareDate,
		&res.OpenResultNumber,
		&res.CloseResultNumber,
		&res.GameResultNumber,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.GameCategory = model.GameCategory(category)
	return &res, nil
}

// LockGameDay takes a transaction-scoped advisory lock on a game-day, so
// declarations from other processes queue behind this transaction.
func (r *ResultRepository) LockGameDay(ctx context.Context, gameID int64, day time.Time) error {
	key := fmt.Sprintf("game_day:%d:%s", gameID, day.Format(service.DayLayout))
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("failed to lock game day: %w", err)
	}
	return nil
}

// Get returns the result of a game-day.
// Returns service.ErrResultNotFound if nothing was declared.
func (r *ResultRepository) Get(ctx context.Context, gameID int64, day time.Time) (*model.GameResult, error) {
	query := `SELECT ` + resultColumns + ` FROM game_results WHERE game_id = $1 AND result_declare_date = $2`

	res, err := scanResult(r.db.QueryRow(ctx, query, gameID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

// Upsert writes the numbers of a game-day, replacing any earlier row.
func (r *ResultRepository) Upsert(ctx context.Context, result *model.GameResult) (*model.GameResult, error) {
	query := `
		INSERT INTO game_results (game_id, game_category, result_declare_date, open_result_number,
			close_result_number, game_result_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (game_id, result_declare_date) DO UPDATE SET
			open_result_number = EXCLUDED.open_result_number,
			close_result_number = EXCLUDED.close_result_number,
			game_result_number = EXCLUDED.game_result_number,
			updated_at = NOW()
		RETURNING ` + resultColumns

	res, err := scanResult(r.db.QueryRow(ctx, query,
		result.GameID,
		string(result.GameCategory),
		result.ResultDeclareDate,
		result.OpenResultNumber,
		result.CloseResultNumber,
		result.GameResultNumber,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}
	return res, nil
}

// Delete removes the result row of a game-day.
func (r *ResultRepository) Delete(ctx context.Context, gameID int64, day time.Time) error {
	const query = `DELETE FROM game_results WHERE game_id = $1 AND result_declare_date = $2`

	if _, err := r.db.Exec(ctx, query, gameID, day); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}
