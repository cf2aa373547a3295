package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/report"
	"matka-bot/internal/service"
)

const reportUsage = "❌ Usage:\n" +
	"/report cutting <session> <game_id> [YYYY-MM-DD]\n" +
	"/report sales [YYYY-MM-DD] [game_id]\n" +
	"/report pl [YYYY-MM-DD]\n" +
	"Sessions: open, close, open-all, close-all, half-sangam, full-sangam, jodi"

// maxCuttingRows bounds a cutting report reply; Telegram rejects messages
// over 4096 characters.
const maxCuttingRows = 40

// ReportHandler handles the admin /report command.
type ReportHandler struct {
	reportService *service.ReportService
	clock         service.Clock
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, clock service.Clock) *ReportHandler {
	return &ReportHandler{reportService: reportService, clock: clock}
}

type reportRequest struct {
	kind    string
	session matka.ReportSession
	filter  model.BidFilter
}

func (h *ReportHandler) parse(args []string) (reportRequest, error) {
	if len(args) == 0 {
		return reportRequest{}, errors.New(reportUsage)
	}
	req := reportRequest{kind: strings.ToLower(args[0])}
	today := h.clock.Today()

	switch req.kind {
	case "cutting":
		if len(args) < 3 || len(args) > 4 {
			return reportRequest{}, errors.New(reportUsage)
		}
		session, ok := matka.ParseReportSession(args[1])
		if !ok {
			return reportRequest{}, fmt.Errorf("❌ Unknown report session %q", args[1])
		}
		gameID, err := parseID(args[2], "game id")
		if err != nil {
			return reportRequest{}, err
		}
		day, err := parseDay(args, 3, today)
		if err != nil {
			return reportRequest{}, err
		}
		req.session = session
		req.filter = model.BidFilter{GameID: &gameID, Day: &day}
	case "sales", "pl":
		if len(args) > 3 {
			return reportRequest{}, errors.New(reportUsage)
		}
		day, err := parseDay(args, 1, today)
		if err != nil {
			return reportRequest{}, err
		}
		req.filter = model.BidFilter{Day: &day}
		if len(args) == 3 {
			gameID, err := parseID(args[2], "game id")
			if err != nil {
				return reportRequest{}, err
			}
			req.filter.GameID = &gameID
		}
	default:
		return reportRequest{}, errors.New(reportUsage)
	}
	return req, nil
}

// HandleReport handles the /report command.
func (h *ReportHandler) HandleReport(c tele.Context) error {
	ctx := context.Background()
	req, err := h.parse(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}

	switch req.kind {
	case "cutting":
		rep, err := h.reportService.Cutting(ctx, req.session, req.filter)
		if err != nil {
			return c.Reply(replyFor(err, "report_cutting"))
		}
		return c.Reply(formatCutting(rep))
	case "sales":
		rep, err := h.reportService.Sales(ctx, req.filter)
		if err != nil {
			return c.Reply(replyFor(err, "report_sales"))
		}
		return c.Reply(formatSales(rep))
	default:
		rep, err := h.reportService.ProfitLoss(ctx, req.filter)
		if err != nil {
			return c.Reply(replyFor(err, "report_pl"))
		}
		return c.Reply(formatProfitLoss(rep))
	}
}

func formatCutting(rep report.CuttingReport) string {
	if len(rep.Rows) == 0 {
		return fmt.Sprintf("📭 No %s bids", rep.Session)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✂️ Cutting report (%s)\n━━━━━━━━━━━━━━━\n", rep.Session)
	for i, row := range rep.Rows {
		if i == maxCuttingRows {
			fmt.Fprintf(&sb, "… %d more keys\n", len(rep.Rows)-i)
			break
		}
		fmt.Fprintf(&sb, "%s [%s] bids %d | amount %s | liability %s | house +%s/-%s\n",
			row.Key, row.RateType, row.BidCount,
			money(row.TotalAmount), money(row.Liability), money(row.HouseWin), money(row.HouseLoss))
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(&sb, "⚠️ %d bids skipped\n", len(rep.Skipped))
	}
	return sb.String()
}

func formatTotals(t report.Totals) string {
	return fmt.Sprintf("bids %d (W%d/L%d/P%d) | in %s | out %s | net %s",
		t.Bids, t.Won, t.Lost, t.Pending, money(t.Amount), money(t.WinAmount), money(t.Net))
}

func formatSales(rep report.SalesReport) string {
	var sb strings.Builder
	sb.WriteString("🧾 Sales report\n━━━━━━━━━━━━━━━\n")
	for _, row := range rep.Rows {
		fmt.Fprintf(&sb, "%s: %s\n", row.GameType, formatTotals(row.Totals))
	}
	fmt.Fprintf(&sb, "━━━━━━━━━━━━━━━\nTotal: %s", formatTotals(rep.Total))
	return sb.String()
}

func formatProfitLoss(rep report.ProfitLossReport) string {
	var sb strings.Builder
	sb.WriteString("📈 Profit / loss\n━━━━━━━━━━━━━━━\n")
	for _, row := range rep.Rows {
		fmt.Fprintf(&sb, "#%d %s: %s\n", row.GameID, row.GameName, formatTotals(row.Totals))
	}
	fmt.Fprintf(&sb, "━━━━━━━━━━━━━━━\nTotal: %s", formatTotals(rep.Total))
	return sb.String()
}
