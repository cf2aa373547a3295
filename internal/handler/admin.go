package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

// AdminHandler handles wallet, game and rate administration.
type AdminHandler struct {
	accountService *service.AccountService
	gameService    *service.GameService
	rateService    *service.RateService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accountService *service.AccountService, gameService *service.GameService, rateService *service.RateService) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
		gameService:    gameService,
		rateService:    rateService,
	}
}

// HandleAdminAdd handles the /admin_add command.
// Format: /admin_add <user_id> <amount>
func (h *AdminHandler) HandleAdminAdd(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amount, err := parseAdminArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}

	change, err := h.accountService.AdminCredit(ctx, targetID, amount, sender.ID)
	if err != nil {
		return c.Reply(replyFor(err, "admin_add"))
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int64("amount", amount).
		Str("operation", "admin_add").
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf(
		"✅ Wallet credited\n\n"+
			"👤 User: %d\n"+
			"➕ Added: %d\n"+
			"💰 Balance: %d → %d",
		targetID, amount, change.Previous, change.Current,
	))
}

// parseAdminArgs parses <user_id> <amount>.
func parseAdminArgs(args []string) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, errors.New("❌ Usage: /admin_add <user_id> <amount>\ne.g. /admin_add 123456789 1000")
	}
	targetID, err := parseID(args[0], "user id")
	if err != nil {
		return 0, 0, err
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return 0, 0, errors.New("❌ Amount must be a positive whole number")
	}
	return targetID, amount, nil
}

// HandleGameAdd handles the /game_add command.
// Format: /game_add <category> <name...>
func (h *AdminHandler) HandleGameAdd(c tele.Context) error {
	ctx := context.Background()
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ Usage: /game_add <day_game|quick_dhan_laxmi|quick_maha_laxmi> <name>\n" +
			"e.g. /game_add day_game Kalyan")
	}

	category, ok := model.ParseCategory(args[0])
	if !ok {
		return c.Reply(replyFor(service.ErrUnknownCategory, "game_add"))
	}

	g, err := h.gameService.CreateGame(ctx, strings.Join(args[1:], " "), category)
	if err != nil {
		return c.Reply(replyFor(err, "game_add"))
	}

	return c.Reply(fmt.Sprintf("✅ Game #%d %s (%s) created with default rates", g.ID, g.Name, g.Category))
}

// HandleGames handles the /games command.
func (h *AdminHandler) HandleGames(c tele.Context) error {
	games, err := h.gameService.ListGames(context.Background())
	if err != nil {
		return c.Reply(replyFor(err, "games"))
	}
	if len(games) == 0 {
		return c.Reply("📭 No games yet")
	}

	var sb strings.Builder
	sb.WriteString("🎲 Games\n━━━━━━━━━━━━━━━\n")
	for _, g := range games {
		fmt.Fprintf(&sb, "#%d %s (%s) last: %s-%s-%s\n",
			g.ID, g.Name, g.Category, orDash(g.LastOpenNumber), orDash(g.LastResultNumber), orDash(g.LastCloseNumber))
	}
	return c.Reply(sb.String())
}

// HandleRates handles the /rates command.
// Format: /rates <game_id>
func (h *AdminHandler) HandleRates(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /rates <game_id>")
	}
	gameID, err := parseID(args[0], "game id")
	if err != nil {
		return c.Reply(err.Error())
	}

	rates, err := h.rateService.List(context.Background(), gameID)
	if err != nil {
		return c.Reply(replyFor(err, "rates"))
	}
	if len(rates) == 0 {
		return c.Reply("📭 No rates configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Rates for game #%d\n━━━━━━━━━━━━━━━\n", gameID)
	for _, r := range rates {
		fmt.Fprintf(&sb, "%s: ×%d\n", r.GameType, r.GamePrice)
	}
	return c.Reply(sb.String())
}

// HandleRate handles the /rate command.
// Format: /rate <game_id> <rate_type> <price>
func (h *AdminHandler) HandleRate(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 3 {
		return c.Reply("❌ Usage: /rate <game_id> <rate_type> <price>\ne.g. /rate 1 single_pana 150")
	}
	gameID, err := parseID(args[0], "game id")
	if err != nil {
		return c.Reply(err.Error())
	}
	rateType, ok := model.ParseRateType(args[1])
	if !ok {
		return c.Reply(fmt.Sprintf("❌ Unknown rate type %q", args[1]))
	}
	price, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return c.Reply(replyFor(service.ErrInvalidPrice, "rate"))
	}

	rate, err := h.rateService.UpdatePrice(ctx, gameID, rateType, price)
	if err != nil {
		return c.Reply(replyFor(err, "rate"))
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("game_id", gameID).
		Str("rate_type", string(rateType)).
		Int64("price", price).
		Str("operation", "rate").
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("✅ %s rate for game #%d is now ×%d", rate.GameType, gameID, rate.GamePrice))
}
