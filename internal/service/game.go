package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"matka-bot/internal/game"
	"matka-bot/internal/model"
)

// GameService manages games and their seeded rate tables.
type GameService struct {
	store    Store
	registry *game.Registry
}

// NewGameService creates a new GameService instance.
func NewGameService(store Store, registry *game.Registry) *GameService {
	return &GameService{store: store, registry: registry}
}

// CreateGame creates a game and seeds its rate table from the category
// defaults in the same transaction.
func (s *GameService) CreateGame(ctx context.Context, name string, category model.GameCategory) (*model.Game, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("game name cannot be empty")
	}
	c, ok := s.registry.Get(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	var created *model.Game
	err := s.store.WithTx(ctx, func(tx Store) error {
		g, err := tx.Games().Create(ctx, name, c.Name())
		if err != nil {
			return err
		}
		if err := tx.Rates().Seed(ctx, g.ID, c.DefaultRates()); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info().
		Int64("game_id", created.ID).
		Str("name", created.Name).
		Str("category", string(created.Category)).
		Msg("Game created")
	return created, nil
}

// GetGame returns a game by id.
func (s *GameService) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	return s.store.Games().GetByID(ctx, id)
}

// ListGames returns all games.
func (s *GameService) ListGames(ctx context.Context) ([]model.Game, error) {
	return s.store.Games().List(ctx)
}
