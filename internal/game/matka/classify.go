package matka

import (
	"fmt"

	"matka-bot/internal/model"
)

// Family groups game types that share a number shape.
type Family int

const (
	FamilyDigit Family = iota + 1
	FamilyJodi
	FamilyPana
	FamilyHalfSangam
	FamilyFullSangam
)

// FamilyOf returns the shape family of a game type.
func FamilyOf(gameType model.GameType) (Family, error) {
	switch gameType {
	case model.GameTypeOpen, model.GameTypeClose, model.GameTypeOddEven, model.GameTypeSingleDigit:
		return FamilyDigit, nil
	case model.GameTypeJodi, model.GameTypeJodiCycle, model.GameTypeRedHalf,
		model.GameTypeRedFull, model.GameTypeFamily:
		return FamilyJodi, nil
	case model.GameTypeOpenPana, model.GameTypeClosePana, model.GameTypePana,
		model.GameTypeSPMotor, model.GameTypeDPMotor, model.GameTypeTPMotor,
		model.GameTypeSPDPTP, model.GameTypePanelGroup, model.GameTypeTwoDigitPana,
		model.GameTypeChoicePana:
		return FamilyPana, nil
	case model.GameTypeOpenHalfSangam, model.GameTypeCloseHalfSangam:
		return FamilyHalfSangam, nil
	case model.GameTypeFullSangam:
		return FamilyFullSangam, nil
	}
	return 0, fmt.Errorf("%w: unknown game type %q", ErrClassification, gameType)
}

// ClassifyPanel applies the digit-repetition rule to a 3-digit panel:
// all equal is a triple pana, exactly two equal a double pana, otherwise single.
func ClassifyPanel(panel string) (model.RateType, error) {
	if len(panel) != 3 || !isDigits(panel) {
		return "", fmt.Errorf("%w: panel %q is not 3 digits", ErrMalformedNumber, panel)
	}
	a, b, c := panel[0], panel[1], panel[2]
	switch {
	case a == b && b == c:
		return model.RateTriplePana, nil
	case a == b || b == c || a == c:
		return model.RateDoublePana, nil
	default:
		return model.RateSinglePana, nil
	}
}

// Classify derives the rate class of a bid from its game type and number.
// The result is stored on the bid at creation and re-derived at settlement.
func Classify(gameType model.GameType, gameNumber string) (model.RateType, error) {
	family, err := FamilyOf(gameType)
	if err != nil {
		return "", err
	}

	switch family {
	case FamilyDigit:
		return model.RateDigit, nil
	case FamilyJodi:
		return model.RateJodi, nil
	case FamilyHalfSangam:
		return model.RateHalfSangam, nil
	case FamilyFullSangam:
		return model.RateFullSangam, nil
	}

	switch gameType {
	case model.GameTypeTPMotor:
		return model.RateTriplePana, nil
	case model.GameTypeDPMotor:
		// A DP motor only produces double panas; triples keep their own class.
		rt, err := ClassifyPanel(StripPlaceholder(gameNumber))
		if err != nil {
			return "", err
		}
		if rt == model.RateSinglePana {
			return model.RateDoublePana, nil
		}
		return rt, nil
	}
	return ClassifyPanel(StripPlaceholder(gameNumber))
}

// CheckShape verifies that a parsed number has the shape its game type bids on.
func CheckShape(gameType model.GameType, n Number) error {
	family, err := FamilyOf(gameType)
	if err != nil {
		return err
	}

	ok := false
	switch family {
	case FamilyDigit:
		_, ok = n.(SingleDigit)
	case FamilyJodi:
		_, ok = n.(Jodi)
	case FamilyPana:
		_, ok = n.(Pana)
	case FamilyHalfSangam:
		hs, isHalf := n.(HalfSangam)
		switch gameType {
		case model.GameTypeOpenHalfSangam:
			ok = isHalf && hs.Side == SideOpen
		case model.GameTypeCloseHalfSangam:
			ok = isHalf && hs.Side == SideClose
		}
	case FamilyFullSangam:
		_, ok = n.(FullSangam)
	}
	if !ok {
		return fmt.Errorf("%w: %s number %q does not fit game type %q",
			ErrClassification, n.Kind(), n.String(), gameType)
	}
	return nil
}

// DigitSum sums the decimal digits of s. Non-digit characters are ignored.
func DigitSum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			sum += int(s[i] - '0')
		}
	}
	return sum
}

// LastDigit returns n mod 10.
func LastDigit(n int) int {
	return n % 10
}
