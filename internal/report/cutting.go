// Package report builds read-only exposure and profit/loss views over bids.
// Nothing here mutates state; callers load bids and rate tables and pass them in.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
)

// Rates maps a game id to its rate table.
type Rates map[int64]matka.RateTable

// Skipped is a bid left out of a report because it could not be keyed or priced.
type Skipped struct {
	BidID int64
	Err   error
}

// CuttingRow is the exposure of one derived key.
type CuttingRow struct {
	Key      string
	RateType model.RateType
	BidCount int

	// TotalAmount is the wager placed on this key; PaidOut is what settled
	// bids on it already won.
	TotalAmount decimal.Decimal
	PaidOut     decimal.Decimal

	// Rate is the effective multiplier, Liability/TotalAmount.
	Rate      decimal.Decimal
	Liability decimal.Decimal

	// Pool is the wager total of every key with the same length.
	Pool      decimal.Decimal
	HouseWin  decimal.Decimal
	HouseLoss decimal.Decimal
}

// CuttingReport is the grouped exposure of one report session.
type CuttingReport struct {
	Session matka.ReportSession
	Rows    []CuttingRow
	Skipped []Skipped
}

// entry is one bid's contribution to a key.
type entry struct {
	key       string
	rateType  model.RateType
	amount    decimal.Decimal
	paidOut   decimal.Decimal
	liability decimal.Decimal
}

// Cutting builds the cutting-group report for a session. The work runs in
// three phases: per-key totals, per-length pool totals, then each key's
// liability is set against its pool.
func Cutting(session matka.ReportSession, bids []model.Bid, rates Rates) CuttingReport {
	rep := CuttingReport{Session: session}

	// phase 1
	byKey := make(map[string]*CuttingRow)
	for _, b := range bids {
		entries, err := entriesFor(session, b, rates[b.GameID])
		if err != nil {
			rep.Skipped = append(rep.Skipped, Skipped{BidID: b.ID, Err: err})
			continue
		}
		for _, e := range entries {
			row, ok := byKey[e.key]
			if !ok {
				row = &CuttingRow{
					Key:         e.key,
					RateType:    e.rateType,
					TotalAmount: decimal.Zero,
					PaidOut:     decimal.Zero,
					Liability:   decimal.Zero,
				}
				byKey[e.key] = row
			}
			row.BidCount++
			row.TotalAmount = row.TotalAmount.Add(e.amount)
			row.PaidOut = row.PaidOut.Add(e.paidOut)
			row.Liability = row.Liability.Add(e.liability)
		}
	}

	// phase 2
	pools := make(map[int]decimal.Decimal)
	for key, row := range byKey {
		pools[len(key)] = pools[len(key)].Add(row.TotalAmount)
	}

	// phase 3
	rep.Rows = make([]CuttingRow, 0, len(byKey))
	for key, row := range byKey {
		row.Pool = pools[len(key)]
		if row.TotalAmount.IsPositive() {
			row.Rate = row.Liability.Div(row.TotalAmount)
		}
		row.HouseWin = decimal.Max(decimal.Zero, row.Pool.Sub(row.Liability))
		row.HouseLoss = decimal.Max(decimal.Zero, row.Liability.Sub(row.Pool))
		rep.Rows = append(rep.Rows, *row)
	}
	sort.Slice(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i].Key, rep.Rows[j].Key
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return rep
}

// entriesFor selects and keys a bid for a session. A bid outside the session
// yields no entries and no error.
func entriesFor(session matka.ReportSession, b model.Bid, rates matka.RateTable) ([]entry, error) {
	n, err := matka.Parse(b.GameNumber)
	if err != nil {
		return nil, err
	}

	switch session {
	case matka.ReportOpen, matka.ReportClose:
		if !inSession(session, b) {
			return nil, nil
		}
		switch n.(type) {
		case matka.SingleDigit, matka.Pana:
		default:
			return nil, nil
		}
		return priced(session, b, rates, matka.StripPlaceholder(b.GameNumber), b.GameNumber)

	case matka.ReportOpenAll, matka.ReportCloseAll:
		side := matka.SideOpen
		if session == matka.ReportCloseAll {
			side = matka.SideClose
		}
		digit, panel := component(n, side, b.GameSession)
		switch {
		case digit != "":
			return priced(session, b, rates, digit, digit+string(matka.Placeholder))
		case panel != "":
			return priced(session, b, rates, panel, panel)
		}
		return nil, nil

	case matka.ReportJodi:
		if v, ok := n.(matka.Jodi); ok {
			return priced(session, b, rates, v.Value, v.Value)
		}
		return nil, nil

	case matka.ReportHalfSangam:
		v, ok := n.(matka.HalfSangam)
		if !ok {
			return nil, nil
		}
		rate, err := halfSangamRate(v, rates)
		if err != nil {
			return nil, err
		}
		return []entry{newEntry(b, b.GameNumber, model.RateHalfSangam, rate)}, nil

	case matka.ReportFullSangam:
		v, ok := n.(matka.FullSangam)
		if !ok {
			return nil, nil
		}
		rate, err := fullSangamRate(v, rates)
		if err != nil {
			return nil, err
		}
		return []entry{newEntry(b, b.GameNumber, model.RateFullSangam, rate)}, nil
	}
	return nil, nil
}

func inSession(session matka.ReportSession, b model.Bid) bool {
	if session == matka.ReportOpen {
		return b.GameSession == model.SessionOpen
	}
	return b.GameSession == model.SessionClose
}

// component extracts the part of a number that one side's result decides:
// a single digit or a 3-digit panel. At most one of the two is non-empty.
func component(n matka.Number, side matka.Side, session model.GameSession) (digit, panel string) {
	switch v := n.(type) {
	case matka.SingleDigit:
		if v.Side == side {
			return v.Digit, ""
		}
	case matka.Jodi:
		if side == matka.SideOpen {
			return v.Value[:1], ""
		}
		return v.Value[1:], ""
	case matka.Pana:
		s := v.Side
		if s == matka.SideNone {
			s = matka.SideOpen
			if session == model.SessionClose {
				s = matka.SideClose
			}
		}
		if s == side {
			return "", v.Digits
		}
	case matka.HalfSangam:
		if v.Side == side {
			return v.Digit, ""
		}
		return "", v.Panel
	case matka.FullSangam:
		if side == matka.SideOpen {
			return "", v.OpenPanel
		}
		return "", v.ClosePanel
	}
	return "", ""
}

func priced(session matka.ReportSession, b model.Bid, rates matka.RateTable, key, encoded string) ([]entry, error) {
	rt, err := matka.ReportRateType(session, b.GameRateType, encoded)
	if err != nil {
		return nil, err
	}
	price, err := rates.Lookup(rt)
	if err != nil {
		return nil, err
	}
	return []entry{newEntry(b, key, rt, decimal.NewFromInt(price))}, nil
}

func newEntry(b model.Bid, key string, rt model.RateType, rate decimal.Decimal) entry {
	amount := decimal.NewFromInt(b.GameAmount)
	return entry{
		key:       key,
		rateType:  rt,
		amount:    amount,
		paidOut:   decimal.NewFromInt(b.WinAmount),
		liability: amount.Mul(rate),
	}
}
