// Package events publishes domain events about declarations and settlement
// to NATS after the corresponding database work has committed.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeResultDeclared = "result.declared"
	TypeResultDeleted  = "result.deleted"
	TypeBidSettled     = "bid.settled"
)

// Event is anything that can be published.
type Event interface {
	Type() string
}

// ResultDeclared is published after an open or close declaration has been
// stored and settled.
type ResultDeclared struct {
	GameID     int64     `json:"game_id"`
	Day        string    `json:"day"`
	Stage      string    `json:"stage"`
	Open       string    `json:"open_result_number"`
	Close      string    `json:"close_result_number,omitempty"`
	Result     string    `json:"game_result_number"`
	Won        int       `json:"won"`
	Lost       int       `json:"lost"`
	Pending    int       `json:"pending"`
	Failed     int       `json:"failed"`
	Payout     int64     `json:"payout"`
	DeclaredAt time.Time `json:"declared_at"`
}

func (ResultDeclared) Type() string { return TypeResultDeclared }

// ResultDeleted is published after a declaration has been reversed.
type ResultDeleted struct {
	GameID        int64  `json:"game_id"`
	Day           string `json:"day"`
	Stage         string `json:"stage"`
	ResetBids     int64  `json:"reset_bids"`
	ReversedTotal int64  `json:"reversed_total"`
}

func (ResultDeleted) Type() string { return TypeResultDeleted }

// BidSettled is published for every bid a settlement pass moved to WIN or LOSS.
type BidSettled struct {
	BidID     int64  `json:"bid_id"`
	UserID    int64  `json:"user_id"`
	GameID    int64  `json:"game_id"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	WinAmount int64  `json:"win_amount"`
}

func (BidSettled) Type() string { return TypeBidSettled }

// Publisher publishes events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }
