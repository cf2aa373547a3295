// Package game defines the game categories offered by the platform and the
// registry they are looked up from.
package game

import "matka-bot/internal/model"

// Category describes one game category: which bid variants its games accept
// and which rate rows a new game of the category is seeded with.
type Category interface {
	// Name returns the category as stored on games and bids (e.g. "DAY GAME").
	Name() model.GameCategory

	// Description returns a short human-readable description.
	Description() string

	// Offers reports whether games of this category accept the game type.
	Offers(gameType model.GameType) bool

	// GameTypes returns the accepted game types in menu order.
	GameTypes() []model.GameType

	// DefaultRates returns the rate rows seeded at game creation.
	DefaultRates() map[model.RateType]int64
}
