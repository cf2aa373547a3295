// Package model defines the persisted shapes and fixed vocabularies of the matka platform.
package model

import "time"

// User represents a player account and its wallet balance.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Balance    int64     `db:"balance"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Game is a matka market. The Last* fields are a read-model rebuilt from the
// latest game result; nothing reads them back to make settlement decisions.
type Game struct {
	ID               int64        `db:"id"`
	Name             string       `db:"name"`
	Category         GameCategory `db:"category"`
	LastOpenNumber   *string      `db:"last_open_number"`
	LastCloseNumber  *string      `db:"last_close_number"`
	LastResultNumber *string      `db:"last_result_number"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

// Bid is a single wager on an encoded game number.
type Bid struct {
	ID                int64        `db:"id"`
	UserID            int64        `db:"user_id"`
	GameID            int64        `db:"game_id"`
	GameCategory      GameCategory `db:"game_category"`
	GameSession       GameSession  `db:"game_session"`
	GameType          GameType     `db:"game_type"`
	GameRateType      RateType     `db:"game_rate_type"`
	GameNumber        string       `db:"game_number"`
	GameAmount        int64        `db:"game_amount"`
	WinAmount         int64        `db:"win_amount"`
	ResultStatus      ResultStatus `db:"result_status"`
	ResultDeclareDate time.Time    `db:"result_declare_date"`
	UpdatedBy         UpdatedBy    `db:"updated_by"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

// GameResult holds the declared numbers of one game-day.
type GameResult struct {
	ID                int64        `db:"id"`
	GameID            int64        `db:"game_id"`
	GameCategory      GameCategory `db:"game_category"`
	ResultDeclareDate time.Time    `db:"result_declare_date"`
	OpenResultNumber  *string      `db:"open_result_number"`
	CloseResultNumber *string      `db:"close_result_number"`
	GameResultNumber  *string      `db:"game_result_number"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

// GameRate is one row of a game's rate table.
type GameRate struct {
	GameID    int64     `db:"game_id"`
	GameType  RateType  `db:"game_type"`
	GamePrice int64     `db:"game_price"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transaction represents a wallet ledger entry. Amount is always positive;
// Direction says which way it moved the wallet.
type Transaction struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	BidID          *int64    `db:"bid_id"`
	Type           string    `db:"type"`
	Direction      Direction `db:"direction"`
	Amount         int64     `db:"amount"`
	PreviousAmount int64     `db:"previous_amount"`
	CurrentAmount  int64     `db:"current_amount"`
	Stage          *string   `db:"stage"`
	ReversalOf     *int64    `db:"reversal_of"`
	Description    *string   `db:"description"`
	CreatedAt      time.Time `db:"created_at"`
}

// Direction is the wallet movement of a ledger entry.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Transaction types for categorizing balance changes.
const (
	TxTypeBid         = "bid"          // Wager placed
	TxTypeWin         = "win"          // Settlement payout
	TxTypeWinReversal = "win_reversal" // Payout reversed by a result deletion
	TxTypeAdminAdd    = "admin_add"    // Admin added balance
)

// BalanceChange is the wallet before and after one atomic update.
type BalanceChange struct {
	Previous int64
	Current  int64
}

// BidFilter narrows bid listings. Nil fields do not filter.
type BidFilter struct {
	Day     *time.Time
	GameID  *int64
	UserID  *int64
	Session *GameSession
	Status  *ResultStatus
	Limit   int
}
