package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

// GameRepository handles games and their cached last result.
type GameRepository struct {
	db DBTX
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(db DBTX) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, name, category, last_open_number, last_close_number, last_result_number,
	created_at, updated_at`

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		g        model.Game
		category string
	)
	err := row.Scan(
		&g.ID,
		&g.Name,
		&category,
		&g.LastOpenNumber,
		&g.LastCloseNumber,
		&g.LastResultNumber,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Category = model.GameCategory(category)
	return &g, nil
}

// Create stores a new game.
// Returns service.ErrGameExists if the name is taken.
func (r *GameRepository) Create(ctx context.Context, name string, category model.GameCategory) (*model.Game, error) {
	query := `
		INSERT INTO games (name, category, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING ` + gameColumns

	g, err := scanGame(r.db.QueryRow(ctx, query, name, string(category)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, service.ErrGameExists
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

// GetByID retrieves a game.
// Returns service.ErrGameNotFound if the game does not exist.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// List returns all games in id order.
func (r *GameRepository) List(ctx context.Context) ([]model.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var out []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// RefreshResultCache copies the numbers of the latest game result onto the
// game row, or clears them when the game has no result.
func (r *GameRepository) RefreshResultCache(ctx context.Context, gameID int64) error {
	const query = `
		UPDATE games g
		SET last_open_number = latest.open_result_number,
		    last_close_number = latest.close_result_number,
		    last_result_number = latest.game_result_number,
		    updated_at = NOW()
		FROM (SELECT $1::BIGINT AS game_id) AS target
		LEFT JOIN LATERAL (
			SELECT open_result_number, close_result_number, game_result_number
			FROM game_results
			WHERE game_id = target.game_id
			ORDER BY result_declare_date DESC
			LIMIT 1
		) AS latest ON TRUE
		WHERE g.id = target.game_id
	`

	tag, err := r.db.Exec(ctx, query, gameID)
	if err != nil {
		return fmt.Errorf("failed to refresh result cache: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrGameNotFound
	}
	return nil
}
