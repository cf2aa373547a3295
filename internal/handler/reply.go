// Package handler provides Telegram bot command handlers.
package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/pkg/lock"
	"matka-bot/internal/service"
)

// errorReplies maps known errors to the text players and admins see.
var errorReplies = []struct {
	err   error
	reply string
}{
	{service.ErrInsufficientBalance, "❌ Insufficient balance"},
	{service.ErrUserNotFound, "❌ Account not found, send /start first"},
	{service.ErrGameNotFound, "❌ Game not found"},
	{service.ErrGameExists, "❌ A game with that name already exists"},
	{service.ErrResultNotFound, "❌ No result declared for that day"},
	{service.ErrRateNotFound, "❌ This game has no such rate"},
	{service.ErrUnknownCategory, "❌ Unknown game category"},
	{service.ErrGameTypeNotOffered, "❌ This game does not offer that game type"},
	{service.ErrInvalidAmount, "❌ Invalid amount"},
	{service.ErrInvalidPrice, "❌ Invalid price"},
	{service.ErrBettingClosed, "❌ Betting is closed for this session"},
	{service.ErrSettlementIncomplete, "⚠️ Result stored but settlement failed, run /resettle"},
	{matka.ErrAlreadyDeclared, "❌ Result already declared"},
	{matka.ErrOrdering, "❌ Declare or delete the open result first"},
	{matka.ErrNotDeclared, "❌ That result was never declared"},
	{matka.ErrInvalidResult, "❌ A result must be 1 to 3 digits"},
	{matka.ErrRateLookup, "❌ Rate not configured for this bid"},
	{matka.ErrMalformedNumber, "❌ Invalid game number"},
	{matka.ErrClassification, "❌ Number does not match the game type"},
	{lock.ErrLockTimeout, "⏳ Busy, please try again"},
}

// replyFor returns the message for err. Unknown errors are logged and get a
// generic reply so internal details never reach the chat.
func replyFor(err error, op string) string {
	for _, e := range errorReplies {
		if errors.Is(err, e.err) {
			return e.reply
		}
	}
	log.Error().Err(err).Str("operation", op).Msg("Command failed")
	return "❌ Operation failed, please try again later"
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("❌ Invalid %s: %q", what, s)
	}
	return id, nil
}

// parseDay reads an optional YYYY-MM-DD argument at args[i], defaulting to today.
func parseDay(args []string, i int, today time.Time) (time.Time, error) {
	if len(args) <= i {
		return today, nil
	}
	day, err := service.ParseDay(args[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("❌ Invalid date %q, use YYYY-MM-DD", args[i])
	}
	return day, nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
