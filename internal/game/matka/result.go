package matka

import (
	"fmt"
	"strconv"
)

// State is the declaration state of a game-day.
type State string

const (
	StateNoResult      State = "NO_RESULT"
	StateOpenDeclared  State = "OPEN_DECLARED"
	StateCloseDeclared State = "CLOSE_DECLARED"
)

// Declaration is the result of one game-day as seen by the engine.
// Result is the derived result number: one digit after open, the jodi after close.
type Declaration struct {
	Open   string
	Close  string
	Result string
}

// State reports how far the game-day has been declared.
func (d Declaration) State() State {
	switch {
	case d.Close != "":
		return StateCloseDeclared
	case d.Open != "":
		return StateOpenDeclared
	default:
		return StateNoResult
	}
}

// ValidatePanel checks a declared result number. Results are normally 3-digit
// panels; shorter digit strings are accepted and compared as-is.
func ValidatePanel(panel string) error {
	if len(panel) > 3 || !isDigits(panel) {
		return fmt.Errorf("%w: got %q", ErrInvalidResult, panel)
	}
	return nil
}

// ResultDigit returns lastDigit(digitSum(panel)).
func ResultDigit(panel string) int {
	return LastDigit(DigitSum(panel))
}

// FinalResult returns the jodi of an open and close panel, always two
// characters: FinalResult("138", "47") == "21", and an open digit of 0
// keeps its leading zero ("05", "00").
func FinalResult(open, close string) string {
	return fmt.Sprintf("%d%d", ResultDigit(open), ResultDigit(close))
}

// RawJodi is the jodi as an integer rendered without padding, so an open
// digit of 0 and close digit 5 gives "5".
func RawJodi(open, close string) string {
	return strconv.Itoa(ResultDigit(open)*10 + ResultDigit(close))
}

// DeclareOpen records the open panel of a game-day.
func DeclareOpen(d Declaration, open string) (Declaration, error) {
	if err := ValidatePanel(open); err != nil {
		return d, err
	}
	if d.Open != "" {
		return d, fmt.Errorf("%w: open result is %s", ErrAlreadyDeclared, d.Open)
	}
	return Declaration{
		Open:   open,
		Result: strconv.Itoa(ResultDigit(open)),
	}, nil
}

// DeclareClose records the close panel. The open panel must already be set.
func DeclareClose(d Declaration, close string) (Declaration, error) {
	if err := ValidatePanel(close); err != nil {
		return d, err
	}
	if d.Open == "" {
		return d, fmt.Errorf("%w: close declared before open", ErrOrdering)
	}
	if d.Close != "" {
		return d, fmt.Errorf("%w: close result is %s", ErrAlreadyDeclared, d.Close)
	}
	return Declaration{
		Open:   d.Open,
		Close:  close,
		Result: FinalResult(d.Open, close),
	}, nil
}

// DeleteClose steps CLOSE_DECLARED back to OPEN_DECLARED.
func DeleteClose(d Declaration) (Declaration, error) {
	if d.Close == "" {
		return d, fmt.Errorf("%w: no close result", ErrNotDeclared)
	}
	return Declaration{
		Open:   d.Open,
		Result: strconv.Itoa(ResultDigit(d.Open)),
	}, nil
}

// DeleteOpen steps OPEN_DECLARED back to NO_RESULT. It fails while the
// close result still exists.
func DeleteOpen(d Declaration) (Declaration, error) {
	if d.Close != "" {
		return d, fmt.Errorf("%w: delete close result first", ErrOrdering)
	}
	if d.Open == "" {
		return d, fmt.Errorf("%w: no open result", ErrNotDeclared)
	}
	return Declaration{}, nil
}
