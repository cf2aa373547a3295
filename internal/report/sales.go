package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"matka-bot/internal/model"
)

// Totals is the money moved by a set of bids, from the house side.
type Totals struct {
	Bids      int
	Won       int
	Lost      int
	Pending   int
	Amount    decimal.Decimal
	WinAmount decimal.Decimal
	Net       decimal.Decimal // Amount - WinAmount
}

func (t *Totals) add(b model.Bid) {
	t.Bids++
	switch b.ResultStatus {
	case model.StatusWin:
		t.Won++
	case model.StatusLoss:
		t.Lost++
	default:
		t.Pending++
	}
	amount := decimal.NewFromInt(b.GameAmount)
	win := decimal.NewFromInt(b.WinAmount)
	t.Amount = t.Amount.Add(amount)
	t.WinAmount = t.WinAmount.Add(win)
	t.Net = t.Amount.Sub(t.WinAmount)
}

// SalesRow is the sales of one game type.
type SalesRow struct {
	GameType model.GameType
	Totals
}

// SalesReport groups bids by game type.
type SalesReport struct {
	Rows  []SalesRow
	Total Totals
}

// Sales builds the per-game-type sales report. Rows follow the game type menu order.
func Sales(bids []model.Bid) SalesReport {
	byType := make(map[model.GameType]*Totals)
	var rep SalesReport
	for _, b := range bids {
		t, ok := byType[b.GameType]
		if !ok {
			t = &Totals{}
			byType[b.GameType] = t
		}
		t.add(b)
		rep.Total.add(b)
	}

	for _, gt := range model.AllGameTypes() {
		if t, ok := byType[gt]; ok {
			rep.Rows = append(rep.Rows, SalesRow{GameType: gt, Totals: *t})
			delete(byType, gt)
		}
	}
	// unknown types last, in name order
	rest := make([]model.GameType, 0, len(byType))
	for gt := range byType {
		rest = append(rest, gt)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, gt := range rest {
		rep.Rows = append(rep.Rows, SalesRow{GameType: gt, Totals: *byType[gt]})
	}
	return rep
}

// ProfitLossRow is the result of one game.
type ProfitLossRow struct {
	GameID   int64
	GameName string
	Totals
}

// ProfitLossReport groups bids by game.
type ProfitLossReport struct {
	Rows  []ProfitLossRow
	Total Totals
}

// ProfitLoss builds the per-game profit/loss report. names maps game ids to
// display names; unknown ids get an empty name.
func ProfitLoss(bids []model.Bid, names map[int64]string) ProfitLossReport {
	byGame := make(map[int64]*Totals)
	var rep ProfitLossReport
	for _, b := range bids {
		t, ok := byGame[b.GameID]
		if !ok {
			t = &Totals{}
			byGame[b.GameID] = t
		}
		t.add(b)
		rep.Total.add(b)
	}

	ids := make([]int64, 0, len(byGame))
	for id := range byGame {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rep.Rows = append(rep.Rows, ProfitLossRow{GameID: id, GameName: names[id], Totals: *byGame[id]})
	}
	return rep
}
