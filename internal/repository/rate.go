package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

// RateRepository handles game rate tables.
type RateRepository struct {
	db DBTX
}

// NewRateRepository creates a new RateRepository instance.
func NewRateRepository(db DBTX) *RateRepository {
	return &RateRepository{db: db}
}

func scanRate(row pgx.Row) (*model.GameRate, error) {
	var (
		rate     model.GameRate
		rateType string
	)
	if err := row.Scan(&rate.GameID, &rateType, &rate.GamePrice, &rate.UpdatedAt); err != nil {
		return nil, err
	}
	rate.GameType = model.RateType(rateType)
	return &rate, nil
}

// Seed writes a full rate table in one batch. Existing rows are overwritten.
func (r *RateRepository) Seed(ctx context.Context, gameID int64, rates map[model.RateType]int64) error {
	const query = `
		INSERT INTO game_rates (game_id, game_type, game_price, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (game_id, game_type) DO UPDATE SET game_price = EXCLUDED.game_price, updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for rt, price := range rates {
		batch.Queue(query, gameID, string(rt), price)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed rates: %w", err)
	}
	return nil
}

// ListByGame returns the rate rows of a game.
func (r *RateRepository) ListByGame(ctx context.Context, gameID int64) ([]model.GameRate, error) {
	const query = `
		SELECT game_id, game_type, game_price, updated_at
		FROM game_rates
		WHERE game_id = $1
		ORDER BY game_type
	`

	rows, err := r.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	defer rows.Close()

	var out []model.GameRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		out = append(out, *rate)
	}
	return out, rows.Err()
}

// UpdatePrice changes one multiplier.
// Returns service.ErrRateNotFound if the game has no such rate row.
func (r *RateRepository) UpdatePrice(ctx context.Context, gameID int64, rateType model.RateType, price int64) (*model.GameRate, error) {
	const query = `
		UPDATE game_rates
		SET game_price = $3, updated_at = NOW()
		WHERE game_id = $1 AND game_type = $2
		RETURNING game_id, game_type, game_price, updated_at
	`

	rate, err := scanRate(r.db.QueryRow(ctx, query, gameID, string(rateType), price))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to update rate: %w", err)
	}
	return rate, nil
}
