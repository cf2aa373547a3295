package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
)

// RateService reads and edits game rate tables.
type RateService struct {
	store Store
}

// NewRateService creates a new RateService instance.
func NewRateService(store Store) *RateService {
	return &RateService{store: store}
}

// List returns the rate rows of a game.
func (s *RateService) List(ctx context.Context, gameID int64) ([]model.GameRate, error) {
	if _, err := s.store.Games().GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.Rates().ListByGame(ctx, gameID)
}

// Table returns the rate table of a game.
func (s *RateService) Table(ctx context.Context, gameID int64) (matka.RateTable, error) {
	rows, err := s.store.Rates().ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	return matka.NewRateTable(rows), nil
}

// UpdatePrice changes one multiplier in place. Last write wins.
func (s *RateService) UpdatePrice(ctx context.Context, gameID int64, rateType model.RateType, price int64) (*model.GameRate, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}
	rate, err := s.store.Rates().UpdatePrice(ctx, gameID, rateType, price)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("game_id", gameID).
		Str("rate_type", string(rateType)).
		Int64("price", price).
		Msg("Rate updated")
	return rate, nil
}
