package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"matka-bot/internal/model"
)

// ErrBidNotFound is returned when a bid id does not exist.
var ErrBidNotFound = errors.New("bid not found")

// BidRepository handles bid persistence.
type BidRepository struct {
	db DBTX
}

// NewBidRepository creates a new BidRepository instance.
func NewBidRepository(db DBTX) *BidRepository {
	return &BidRepository{db: db}
}

const bidColumns = `id, user_id, game_id, game_category, game_session, game_type, game_rate_type,
	game_number, game_amount, win_amount, result_status, result_declare_date, updated_by,
	created_at, updated_at`

func scanBid(row pgx.Row) (*model.Bid, error) {
	var (
		b                 model.Bid
		category, session string
		gameType, rate    string
		status, updatedBy string
	)
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.GameID,
		&category,
		&session,
		&gameType,
		&rate,
		&b.GameNumber,
		&b.GameAmount,
		&b.WinAmount,
		&status,
		&b.ResultDeclareDate,
		&updatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.GameCategory = model.GameCategory(category)
	b.GameSession = model.GameSession(session)
	b.GameType = model.GameType(gameType)
	b.GameRateType = model.RateType(rate)
	b.ResultStatus = model.ResultStatus(status)
	b.UpdatedBy = model.UpdatedBy(updatedBy)
	return &b, nil
}

func collectBids(rows pgx.Rows) ([]model.Bid, error) {
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func markers(by []model.UpdatedBy) []string {
	out := make([]string, len(by))
	for i, u := range by {
		out[i] = string(u)
	}
	return out
}

// Create stores a new bid.
func (r *BidRepository) Create(ctx context.Context, bid *model.Bid) (*model.Bid, error) {
	query := `
		INSERT INTO bids (user_id, game_id, game_category, game_session, game_type, game_rate_type,
			game_number, game_amount, win_amount, result_status, result_declare_date, updated_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, NOW(), NOW())
		RETURNING ` + bidColumns

	b, err := scanBid(r.db.QueryRow(ctx, query,
		bid.UserID,
		bid.GameID,
		string(bid.GameCategory),
		string(bid.GameSession),
		string(bid.GameType),
		string(bid.GameRateType),
		bid.GameNumber,
		bid.GameAmount,
		string(bid.ResultStatus),
		bid.ResultDeclareDate,
		string(bid.UpdatedBy),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}
	return b, nil
}

// GetByID retrieves a bid.
func (r *BidRepository) GetByID(ctx context.Context, id int64) (*model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	b, err := scanBid(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return b, nil
}

// ListUnsettled returns the PENDING bids of a game-day last touched by one
// of touchedBy, in id order.
func (r *BidRepository) ListUnsettled(ctx context.Context, gameID int64, day time.Time, touchedBy []model.UpdatedBy) ([]model.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE game_id = $1
		  AND result_declare_date = $2
		  AND result_status = 'PENDING'
		  AND updated_by = ANY($3)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, gameID, day, markers(touchedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled bids: %w", err)
	}
	return collectBids(rows)
}

// ApplyOutcome settles one bid if it is still PENDING and last touched by
// one of touchedBy.
func (r *BidRepository) ApplyOutcome(ctx context.Context, bidID int64, status model.ResultStatus, winAmount int64,
	updatedBy model.UpdatedBy, touchedBy []model.UpdatedBy) (bool, error) {
	const query = `
		UPDATE bids
		SET result_status = $2, win_amount = $3, updated_by = $4, updated_at = NOW()
		WHERE id = $1 AND result_status = 'PENDING' AND updated_by = ANY($5)
	`

	tag, err := r.db.Exec(ctx, query, bidID, string(status), winAmount, string(updatedBy), markers(touchedBy))
	if err != nil {
		return false, fmt.Errorf("failed to apply outcome: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkTouched records that a declaration looked at still-PENDING bids.
func (r *BidRepository) MarkTouched(ctx context.Context, ids []int64, updatedBy model.UpdatedBy) (int64, error) {
	const query = `
		UPDATE bids
		SET updated_by = $2, updated_at = NOW()
		WHERE id = ANY($1) AND result_status = 'PENDING'
	`

	tag, err := r.db.Exec(ctx, query, ids, string(updatedBy))
	if err != nil {
		return 0, fmt.Errorf("failed to mark bids: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Reset returns every bid of a game-day last touched by from to PENDING.
func (r *BidRepository) Reset(ctx context.Context, gameID int64, day time.Time, from, to model.UpdatedBy) (int64, error) {
	const query = `
		UPDATE bids
		SET result_status = 'PENDING', win_amount = 0, updated_by = $4, updated_at = NOW()
		WHERE game_id = $1 AND result_declare_date = $2 AND updated_by = $3
	`

	tag, err := r.db.Exec(ctx, query, gameID, day, string(from), string(to))
	if err != nil {
		return 0, fmt.Errorf("failed to reset bids: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns bids matching filter, newest first.
func (r *BidRepository) List(ctx context.Context, filter model.BidFilter) ([]model.Bid, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Day != nil {
		add("result_declare_date = $%d", *filter.Day)
	}
	if filter.GameID != nil {
		add("game_id = $%d", *filter.GameID)
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Session != nil {
		add("game_session = $%d", string(*filter.Session))
	}
	if filter.Status != nil {
		add("result_status = $%d", string(*filter.Status))
	}

	query := `SELECT ` + bidColumns + ` FROM bids`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return collectBids(rows)
}
