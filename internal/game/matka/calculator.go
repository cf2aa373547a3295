package matka

import (
	"fmt"
	"strconv"

	"matka-bot/internal/model"
)

// Stage is the declaration a settlement pass runs for.
type Stage string

const (
	StageOpen  Stage = "OPEN"
	StageClose Stage = "CLOSE"
)

// UpdatedBy is the marker written on bids touched by this stage.
func (s Stage) UpdatedBy() model.UpdatedBy {
	if s == StageClose {
		return model.UpdatedByClose
	}
	return model.UpdatedByOpen
}

// Draw is everything a settlement pass compares bids against.
type Draw struct {
	Stage      Stage
	Open       string
	Close      string
	OpenDigit  string
	CloseDigit string
	Jodi       string
	RawJodi    string
}

// OpenDraw builds the draw for an open declaration.
func OpenDraw(open string) Draw {
	return Draw{
		Stage:     StageOpen,
		Open:      open,
		OpenDigit: strconv.Itoa(ResultDigit(open)),
	}
}

// CloseDraw builds the draw for a close declaration.
func CloseDraw(open, close string) Draw {
	return Draw{
		Stage:      StageClose,
		Open:       open,
		Close:      close,
		OpenDigit:  strconv.Itoa(ResultDigit(open)),
		CloseDigit: strconv.Itoa(ResultDigit(close)),
		Jodi:       FinalResult(open, close),
		RawJodi:    RawJodi(open, close),
	}
}

// Rules holds the switchable parts of the outcome rules.
type Rules struct {
	// EagerCloseHalfSangamWin marks a close half sangam as WIN at the open
	// stage when its digit equals the open result digit.
	EagerCloseHalfSangamWin bool

	// PlainPanaFollowsSession settles a pana written without a placeholder
	// on the side named by its session, so a CLOSE-session "147" waits for
	// the close panel. When unset a plain pana is decided against the open
	// panel like every other plain number.
	PlainPanaFollowsSession bool
}

// DefaultRules returns the rules production runs with.
func DefaultRules() Rules {
	return Rules{EagerCloseHalfSangamWin: true}
}

// Evaluate decides the status of one parsed bid number against a draw.
// session is only consulted for plain panas under PlainPanaFollowsSession.
func (r Rules) Evaluate(n Number, session model.GameSession, d Draw) model.ResultStatus {
	if d.Stage == StageClose {
		return r.evaluateClose(n, session, d)
	}
	return r.evaluateOpen(n, session, d)
}

func (r Rules) evaluateOpen(n Number, session model.GameSession, d Draw) model.ResultStatus {
	switch v := n.(type) {
	case SingleDigit:
		if v.Side == SideClose {
			return model.StatusPending
		}
		return winOrLoss(v.Digit == d.OpenDigit || v.Digit == d.Open)

	case Pana:
		switch r.sideOf(v.Side, session) {
		case SideClose:
			return model.StatusPending
		case SideNone:
			return winOrLoss(v.Digits == d.Open)
		}
		return winOrLoss(v.Digits == d.OpenDigit || v.Digits == d.Open)

	case Jodi:
		if v.Value == d.Open {
			return model.StatusWin
		}
		return pendingOrLoss(v.Value[:1] == d.OpenDigit)

	case HalfSangam:
		if v.Side == SideOpen {
			return pendingOrLoss(v.Digit == d.OpenDigit)
		}
		if r.EagerCloseHalfSangamWin && v.Digit == d.OpenDigit {
			return model.StatusWin
		}
		return pendingOrLoss(v.Panel == d.Open)

	case FullSangam:
		return pendingOrLoss(v.OpenPanel == d.Open)
	}
	return model.StatusPending
}

func (r Rules) evaluateClose(n Number, session model.GameSession, d Draw) model.ResultStatus {
	switch v := n.(type) {
	case SingleDigit:
		if v.Side == SideOpen {
			return winOrLoss(v.Digit == d.OpenDigit)
		}
		return winOrLoss(v.Digit == d.CloseDigit || v.Digit == d.Close)

	case Pana:
		switch r.sideOf(v.Side, session) {
		case SideOpen:
			return winOrLoss(v.Digits == d.Open)
		case SideNone:
			return winOrLoss(v.Digits == d.Jodi || v.Digits == d.Close || v.Digits == d.RawJodi)
		}
		return winOrLoss(v.Digits == d.Close)

	case Jodi:
		return winOrLoss(v.Value == d.Jodi || v.Value == d.Close || v.Value == d.RawJodi)

	case HalfSangam:
		if v.Side == SideOpen {
			return winOrLoss(v.Digit == d.OpenDigit && v.Panel == d.Close)
		}
		return winOrLoss(v.Panel == d.Open && v.Digit == d.CloseDigit)

	case FullSangam:
		return winOrLoss(v.OpenPanel == d.Open && v.ClosePanel == d.Close)
	}
	return model.StatusPending
}

// sideOf resolves the side a pana is compared on. SideNone means the plain
// number rules apply.
func (r Rules) sideOf(s Side, session model.GameSession) Side {
	if s != SideNone || !r.PlainPanaFollowsSession {
		return s
	}
	if session == model.SessionClose {
		return SideClose
	}
	return SideOpen
}

// DecidedAtOpen reports whether the open declaration takes part in
// deciding a bid. Such bids are no longer accepted once open is declared.
func (r Rules) DecidedAtOpen(n Number, session model.GameSession) bool {
	switch v := n.(type) {
	case SingleDigit:
		return v.Side == SideOpen
	case Pana:
		return r.sideOf(v.Side, session) != SideClose
	default:
		return true
	}
}

func winOrLoss(win bool) model.ResultStatus {
	if win {
		return model.StatusWin
	}
	return model.StatusLoss
}

func pendingOrLoss(pending bool) model.ResultStatus {
	if pending {
		return model.StatusPending
	}
	return model.StatusLoss
}

// Outcome is the computed settlement of one bid. Err is set when the bid
// could not be settled; such bids stay PENDING.
type Outcome struct {
	Bid       model.Bid
	Status    model.ResultStatus
	WinAmount int64
	Err       error
}

// Changed reports whether the outcome moves the bid out of PENDING.
func (o Outcome) Changed() bool {
	return o.Err == nil && o.Status != model.StatusPending
}

// Settle computes the outcome of a stored bid. It parses the number once,
// re-derives the rate class and checks it against the stored one, then
// evaluates and prices the bid. It never touches storage.
func (r Rules) Settle(b model.Bid, rates RateTable, d Draw) Outcome {
	out := Outcome{Bid: b, Status: model.StatusPending}

	n, err := Parse(b.GameNumber)
	if err != nil {
		out.Err = err
		return out
	}
	if err := CheckShape(b.GameType, n); err != nil {
		out.Err = err
		return out
	}
	rt, err := Classify(b.GameType, b.GameNumber)
	if err != nil {
		out.Err = err
		return out
	}
	if rt != b.GameRateType {
		out.Err = fmt.Errorf("%w: stored rate type %q, derived %q", ErrClassification, b.GameRateType, rt)
		return out
	}

	status := r.Evaluate(n, b.GameSession, d)
	if status == model.StatusWin {
		payout, err := rates.Payout(b.GameRateType, b.GameAmount)
		if err != nil {
			out.Err = err
			return out
		}
		out.WinAmount = payout
	}
	out.Status = status
	return out
}
