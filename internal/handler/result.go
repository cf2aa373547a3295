package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/service"
)

// ResultHandler handles result declaration, deletion and queries.
type ResultHandler struct {
	resultService *service.ResultService
	clock         service.Clock
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, clock service.Clock) *ResultHandler {
	return &ResultHandler{resultService: resultService, clock: clock}
}

// dayArgs parses <game_id> [YYYY-MM-DD].
func (h *ResultHandler) dayArgs(args []string, usage string) (int64, time.Time, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, time.Time{}, errors.New(usage)
	}
	gameID, err := parseID(args[0], "game id")
	if err != nil {
		return 0, time.Time{}, err
	}
	day, err := parseDay(args, 1, h.clock.Today())
	if err != nil {
		return 0, time.Time{}, err
	}
	return gameID, day, nil
}

// panelArgs parses <game_id> <panel> [YYYY-MM-DD].
func (h *ResultHandler) panelArgs(args []string, usage string) (int64, string, time.Time, error) {
	if len(args) < 2 || len(args) > 3 {
		return 0, "", time.Time{}, errors.New(usage)
	}
	gameID, err := parseID(args[0], "game id")
	if err != nil {
		return 0, "", time.Time{}, err
	}
	day, err := parseDay(args, 2, h.clock.Today())
	if err != nil {
		return 0, "", time.Time{}, err
	}
	return gameID, args[1], day, nil
}

// HandleDeclareOpen handles the /declare_open command.
// Format: /declare_open <game_id> <panel> [YYYY-MM-DD]
func (h *ResultHandler) HandleDeclareOpen(c tele.Context) error {
	gameID, panel, day, err := h.panelArgs(c.Args(), "❌ Usage: /declare_open <game_id> <panel> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	declared, err := h.resultService.DeclareOpen(context.Background(), gameID, day, panel)
	if err != nil {
		return c.Reply(replyFor(err, "declare_open"))
	}
	h.audit(c, "declare_open", gameID, day)
	return c.Reply(formatDeclared(declared))
}

// HandleDeclareClose handles the /declare_close command.
// Format: /declare_close <game_id> <panel> [YYYY-MM-DD]
func (h *ResultHandler) HandleDeclareClose(c tele.Context) error {
	gameID, panel, day, err := h.panelArgs(c.Args(), "❌ Usage: /declare_close <game_id> <panel> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	declared, err := h.resultService.DeclareClose(context.Background(), gameID, day, panel)
	if err != nil {
		return c.Reply(replyFor(err, "declare_close"))
	}
	h.audit(c, "declare_close", gameID, day)
	return c.Reply(formatDeclared(declared))
}

// HandleDeleteOpen handles the /delete_open command.
// Format: /delete_open <game_id> [YYYY-MM-DD]
func (h *ResultHandler) HandleDeleteOpen(c tele.Context) error {
	gameID, day, err := h.dayArgs(c.Args(), "❌ Usage: /delete_open <game_id> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	deleted, err := h.resultService.DeleteOpen(context.Background(), gameID, day)
	if err != nil {
		return c.Reply(replyFor(err, "delete_open"))
	}
	h.audit(c, "delete_open", gameID, day)
	return c.Reply(formatDeleted("Open", deleted))
}

// HandleDeleteClose handles the /delete_close command.
// Format: /delete_close <game_id> [YYYY-MM-DD]
func (h *ResultHandler) HandleDeleteClose(c tele.Context) error {
	gameID, day, err := h.dayArgs(c.Args(), "❌ Usage: /delete_close <game_id> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	deleted, err := h.resultService.DeleteClose(context.Background(), gameID, day)
	if err != nil {
		return c.Reply(replyFor(err, "delete_close"))
	}
	h.audit(c, "delete_close", gameID, day)
	return c.Reply(formatDeleted("Close", deleted))
}

// HandleResettle handles the /resettle command. It reruns settlement for
// the current declaration after a partial failure.
// Format: /resettle <game_id> [YYYY-MM-DD]
func (h *ResultHandler) HandleResettle(c tele.Context) error {
	gameID, day, err := h.dayArgs(c.Args(), "❌ Usage: /resettle <game_id> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	sum, err := h.resultService.Resettle(context.Background(), gameID, day)
	if err != nil {
		return c.Reply(replyFor(err, "resettle"))
	}
	h.audit(c, "resettle", gameID, day)
	return c.Reply("🔁 Settlement rerun\n\n" + formatSummary(sum))
}

// HandleResult handles the /result command.
// Format: /result <game_id> [YYYY-MM-DD]
func (h *ResultHandler) HandleResult(c tele.Context) error {
	gameID, day, err := h.dayArgs(c.Args(), "❌ Usage: /result <game_id> [YYYY-MM-DD]")
	if err != nil {
		return c.Reply(err.Error())
	}

	res, state, err := h.resultService.Get(context.Background(), gameID, day)
	if err != nil {
		return c.Reply(replyFor(err, "result"))
	}
	if state == matka.StateNoResult {
		return c.Reply(fmt.Sprintf("📭 No result for game #%d on %s", gameID, day.Format(service.DayLayout)))
	}
	return c.Reply(fmt.Sprintf(
		"🎯 Game #%d on %s\n\n%s-%s-%s\n(%s)",
		gameID, day.Format(service.DayLayout),
		orDash(res.OpenResultNumber), orDash(res.GameResultNumber), orDash(res.CloseResultNumber),
		state,
	))
}

func (h *ResultHandler) audit(c tele.Context, op string, gameID int64, day time.Time) {
	var adminID int64
	if s := c.Sender(); s != nil {
		adminID = s.ID
	}
	log.Info().
		Int64("admin_id", adminID).
		Int64("game_id", gameID).
		Str("day", day.Format(service.DayLayout)).
		Str("operation", op).
		Msg("Admin operation executed")
}

func formatDeclared(d *service.Declared) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Result declared (%s)\n\n🎯 %s-%s-%s\n\n",
		d.State,
		orDash(d.Result.OpenResultNumber), orDash(d.Result.GameResultNumber), orDash(d.Result.CloseResultNumber))
	sb.WriteString(formatSummary(d.Summary))
	return sb.String()
}

func formatSummary(s *service.Summary) string {
	out := fmt.Sprintf(
		"📊 %s settlement\n"+
			"Bids: %d | Won: %d | Lost: %d | Pending: %d\n"+
			"💰 Payout: %d",
		s.Stage, s.Total, s.Won, s.Lost, s.Pending, s.Payout,
	)
	if s.Failed > 0 {
		out += fmt.Sprintf("\n⚠️ Failed: %d, run /resettle", s.Failed)
	}
	return out
}

func formatDeleted(stage string, d *service.Deleted) string {
	return fmt.Sprintf(
		"🗑 %s result deleted (%s)\n\n"+
			"Bids reset: %d\n"+
			"Wins reversed: %d (%d)",
		stage, d.State, d.ResetBids, d.Reversed, d.ReversedTotal,
	)
}
