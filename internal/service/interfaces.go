package service

import (
	"context"
	"time"

	"matka-bot/internal/model"
)

// UserRepository persists players and their wallets.
type UserRepository interface {
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
	// Debit subtracts amount in one conditional update and fails with
	// ErrInsufficientBalance instead of going negative.
	Debit(ctx context.Context, telegramID int64, amount int64) (model.BalanceChange, error)
	// Adjust adds a signed delta in one update.
	Adjust(ctx context.Context, telegramID int64, delta int64) (model.BalanceChange, error)
}

// TransactionRepository is the append-only wallet ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	// CreateReversal inserts a reversal of tx.ReversalOf and fails with
	// ErrAlreadyReversed if that transaction was reversed before.
	CreateReversal(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	// ListUnreversedWins returns win credits of a game-day stage that have
	// no reversal yet.
	ListUnreversedWins(ctx context.Context, gameID int64, day time.Time, stage string) ([]model.Transaction, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
}

// BidRepository persists bids.
type BidRepository interface {
	Create(ctx context.Context, bid *model.Bid) (*model.Bid, error)
	GetByID(ctx context.Context, id int64) (*model.Bid, error)
	// ListUnsettled returns PENDING bids of a game-day whose updated_by is
	// one of touchedBy.
	ListUnsettled(ctx context.Context, gameID int64, day time.Time, touchedBy []model.UpdatedBy) ([]model.Bid, error)
	// ApplyOutcome updates a bid only while it is PENDING and its updated_by
	// is one of touchedBy. It reports whether the row changed.
	ApplyOutcome(ctx context.Context, bidID int64, status model.ResultStatus, winAmount int64,
		updatedBy model.UpdatedBy, touchedBy []model.UpdatedBy) (bool, error)
	// MarkTouched sets updated_by on still-PENDING bids without settling them.
	MarkTouched(ctx context.Context, ids []int64, updatedBy model.UpdatedBy) (int64, error)
	// Reset moves every bid of a game-day last touched by from back to
	// PENDING with no win amount and updated_by to.
	Reset(ctx context.Context, gameID int64, day time.Time, from, to model.UpdatedBy) (int64, error)
	List(ctx context.Context, filter model.BidFilter) ([]model.Bid, error)
}

// ResultRepository persists game results.
type ResultRepository interface {
	// LockGameDay takes a transaction-scoped lock on a game-day. It must be
	// called inside WithTx.
	LockGameDay(ctx context.Context, gameID int64, day time.Time) error
	Get(ctx context.Context, gameID int64, day time.Time) (*model.GameResult, error)
	Upsert(ctx context.Context, result *model.GameResult) (*model.GameResult, error)
	Delete(ctx context.Context, gameID int64, day time.Time) error
}

// RateRepository persists rate tables.
type RateRepository interface {
	Seed(ctx context.Context, gameID int64, rates map[model.RateType]int64) error
	ListByGame(ctx context.Context, gameID int64) ([]model.GameRate, error)
	UpdatePrice(ctx context.Context, gameID int64, rateType model.RateType, price int64) (*model.GameRate, error)
}

// GameRepository persists games and their cached last result.
type GameRepository interface {
	Create(ctx context.Context, name string, category model.GameCategory) (*model.Game, error)
	GetByID(ctx context.Context, id int64) (*model.Game, error)
	List(ctx context.Context) ([]model.Game, error)
	// RefreshResultCache rebuilds the cached last_* columns from the
	// latest game result.
	RefreshResultCache(ctx context.Context, gameID int64) error
}

// Store groups the repositories and runs units of work.
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Bids() BidRepository
	Results() ResultRepository
	Rates() RateRepository
	Games() GameRepository

	// WithTx runs fn with a Store bound to one database transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// Notifier delivers best-effort notifications. Notify must not block.
type Notifier interface {
	Notify(token, title, body string)
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

// Notify does nothing.
func (NoopNotifier) Notify(string, string, string) {}
