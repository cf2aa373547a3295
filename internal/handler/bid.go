package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/model"
	"matka-bot/internal/service"
)

const bidUsage = "❌ Usage: /bid <game_id> <open|close> <game_type> <number> <amount>\n" +
	"e.g. /bid 1 open single_digit 5X 100"

// BidHandler handles player bid commands.
type BidHandler struct {
	bidService *service.BidService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bidService *service.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// parseBidArgs reads /bid arguments. Game types with spaces are written
// with underscores.
func parseBidArgs(args []string) (service.PlaceBidRequest, error) {
	if len(args) != 5 {
		return service.PlaceBidRequest{}, errors.New(bidUsage)
	}

	gameID, err := parseID(args[0], "game id")
	if err != nil {
		return service.PlaceBidRequest{}, err
	}
	session, ok := model.ParseSession(args[1])
	if !ok {
		return service.PlaceBidRequest{}, fmt.Errorf("❌ Session must be open or close, got %q", args[1])
	}
	gameType, ok := model.ParseGameType(args[2])
	if !ok {
		return service.PlaceBidRequest{}, fmt.Errorf("❌ Unknown game type %q", args[2])
	}
	amount, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		return service.PlaceBidRequest{}, fmt.Errorf("❌ Amount must be a whole number")
	}

	return service.PlaceBidRequest{
		GameID:   gameID,
		Session:  session,
		GameType: gameType,
		Number:   strings.ToUpper(args[3]),
		Amount:   amount,
	}, nil
}

// HandleBid handles the /bid command.
func (h *BidHandler) HandleBid(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	req, err := parseBidArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}
	req.UserID = sender.ID

	bid, err := h.bidService.PlaceBid(ctx, req)
	if err != nil {
		return c.Reply(replyFor(err, "bid"))
	}

	return c.Reply(fmt.Sprintf(
		"✅ Bid #%d placed\n\n"+
			"🎯 %s %s %s\n"+
			"💵 Amount: %d\n"+
			"📅 Day: %s",
		bid.ID, bid.GameSession, bid.GameType, bid.GameNumber,
		bid.GameAmount, bid.ResultDeclareDate.Format(service.DayLayout),
	))
}

// HandleMyBids handles the /mybids command.
func (h *BidHandler) HandleMyBids(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	bids, err := h.bidService.ListUserBids(ctx, sender.ID, 10)
	if err != nil {
		return c.Reply(replyFor(err, "mybids"))
	}
	if len(bids) == 0 {
		return c.Reply("📭 You have no bids yet")
	}
	return c.Reply(formatBids(bids))
}

func formatBids(bids []model.Bid) string {
	var sb strings.Builder
	sb.WriteString("📋 Recent bids\n━━━━━━━━━━━━━━━\n")
	for _, b := range bids {
		fmt.Fprintf(&sb, "#%d %s game %d | %s %s %s | %d",
			b.ID, b.ResultDeclareDate.Format(service.DayLayout), b.GameID,
			b.GameSession, b.GameType, b.GameNumber, b.GameAmount)
		switch b.ResultStatus {
		case model.StatusWin:
			fmt.Fprintf(&sb, " | 🏆 won %d\n", b.WinAmount)
		case model.StatusLoss:
			sb.WriteString(" | ❌ lost\n")
		default:
			sb.WriteString(" | ⏳ pending\n")
		}
	}
	return sb.String()
}
