package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

// UserRepository handles players and their wallets.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `telegram_id, username, balance, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.TelegramID, &u.Username, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by Telegram ID.
// Returns service.ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetOrCreate returns the user, creating it with an empty wallet first if
// needed. The boolean reports whether the user was created.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	query := `
		INSERT INTO users (telegram_id, username, balance, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, telegramID, username))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	// already there
	u, err = r.GetByID(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	return u, false, nil
}

// Debit subtracts amount only while the balance covers it.
func (r *UserRepository) Debit(ctx context.Context, telegramID int64, amount int64) (model.BalanceChange, error) {
	const query = `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE telegram_id = $1 AND balance >= $2
		RETURNING balance
	`

	var current int64
	err := r.db.QueryRow(ctx, query, telegramID, amount).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, telegramID); getErr != nil {
				return model.BalanceChange{}, getErr
			}
			return model.BalanceChange{}, service.ErrInsufficientBalance
		}
		return model.BalanceChange{}, fmt.Errorf("failed to debit balance: %w", err)
	}
	return model.BalanceChange{Previous: current + amount, Current: current}, nil
}

// Adjust adds a signed delta to the balance.
func (r *UserRepository) Adjust(ctx context.Context, telegramID int64, delta int64) (model.BalanceChange, error) {
	const query = `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING balance
	`

	var current int64
	err := r.db.QueryRow(ctx, query, telegramID, delta).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BalanceChange{}, service.ErrUserNotFound
		}
		return model.BalanceChange{}, fmt.Errorf("failed to update balance: %w", err)
	}
	return model.BalanceChange{Previous: current - delta, Current: current}, nil
}
