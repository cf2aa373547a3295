package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/service"
)

// AccountHandler handles player account commands.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// HandleStart handles the /start command. It registers the player with an
// empty wallet if needed.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	name := displayName(sender)
	user, created, err := h.accountService.EnsureUser(ctx, sender.ID, name)
	if err != nil {
		return c.Reply(replyFor(err, "start"))
	}

	if created {
		log.Info().Int64("user_id", sender.ID).Str("username", name).Msg("Player registered")
		return c.Reply(fmt.Sprintf(
			"🎉 Welcome %s!\n\n"+
				"Your wallet is ready. Balance: %d\n\n"+
				"Commands:\n"+
				"/balance - wallet balance\n"+
				"/bid <game_id> <open|close> <game_type> <number> <amount> - place a bid\n"+
				"/mybids - your recent bids",
			name, user.Balance,
		))
	}

	return c.Reply(fmt.Sprintf("👋 Welcome back %s!\n\nBalance: %d", name, user.Balance))
}

// HandleBalance handles the /balance command.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	balance, err := h.accountService.GetBalance(ctx, sender.ID)
	if err != nil {
		return c.Reply(replyFor(err, "balance"))
	}
	return c.Reply(fmt.Sprintf("💰 Balance: %d", balance))
}
