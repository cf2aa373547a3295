package model

import "strings"

// GameCategory groups games that share a schedule and rate exclusions.
type GameCategory string

const (
	CategoryDayGame        GameCategory = "DAY GAME"
	CategoryQuickDhanLaxmi GameCategory = "QUICK DHAN LAXMI"
	CategoryQuickMahaLaxmi GameCategory = "QUICK MAHA LAXMI"
)

// GameSession is the declaration phase a bid belongs to.
type GameSession string

const (
	SessionOpen  GameSession = "OPEN"
	SessionClose GameSession = "CLOSE"
)

// GameType is the bid variant chosen by the player.
type GameType string

const (
	GameTypeOpen            GameType = "OPEN"
	GameTypeClose           GameType = "CLOSE"
	GameTypeSingleDigit     GameType = "SINGLE DIGIT"
	GameTypeJodi            GameType = "JODI"
	GameTypePana            GameType = "PANA"
	GameTypeJodiCycle       GameType = "JODI CYCLE"
	GameTypeRedHalf         GameType = "RED HALF"
	GameTypeRedFull         GameType = "RED FULL"
	GameTypeOpenPana        GameType = "OPEN PANA"
	GameTypeClosePana       GameType = "CLOSE PANA"
	GameTypeSPMotor         GameType = "SP MOTOR"
	GameTypeDPMotor         GameType = "DP MOTOR"
	GameTypeTPMotor         GameType = "TP MOTOR"
	GameTypeOpenHalfSangam  GameType = "OPEN HALF SANGAM"
	GameTypeCloseHalfSangam GameType = "CLOSE HALF SANGAM"
	GameTypeFullSangam      GameType = "FULL SANGAM"
	GameTypeFamily          GameType = "FAMILY"
	GameTypeSPDPTP          GameType = "SP DP TP"
	GameTypeOddEven         GameType = "ODD EVEN"
	GameTypePanelGroup      GameType = "PANEL GROUP"
	GameTypeTwoDigitPana    GameType = "TWO DIGIT PANA (CP,SR)"
	GameTypeChoicePana      GameType = "CHOICE PANA"
)

// AllGameTypes returns every game type in display order.
func AllGameTypes() []GameType {
	return []GameType{
		GameTypeOpen, GameTypeClose, GameTypeSingleDigit, GameTypeJodi, GameTypePana,
		GameTypeJodiCycle, GameTypeRedHalf, GameTypeRedFull, GameTypeOpenPana, GameTypeClosePana,
		GameTypeSPMotor, GameTypeDPMotor, GameTypeTPMotor, GameTypeOpenHalfSangam,
		GameTypeCloseHalfSangam, GameTypeFullSangam, GameTypeFamily, GameTypeSPDPTP,
		GameTypeOddEven, GameTypePanelGroup, GameTypeTwoDigitPana, GameTypeChoicePana,
	}
}

// RateType is the payout class a bid is settled under.
type RateType string

const (
	RateDigit      RateType = "DIGIT"
	RateJodi       RateType = "JODI"
	RateSinglePana RateType = "SINGLE PANA"
	RateDoublePana RateType = "DOUBLE PANA"
	RateTriplePana RateType = "TRIPLE PANA"
	RateHalfSangam RateType = "HALF SANGAM"
	RateFullSangam RateType = "FULL SANGAM"
)

// AllRateTypes returns every rate class in default-table order.
func AllRateTypes() []RateType {
	return []RateType{
		RateDigit, RateJodi, RateSinglePana, RateDoublePana,
		RateTriplePana, RateHalfSangam, RateFullSangam,
	}
}

// ResultStatus is the settlement state of a bid.
type ResultStatus string

const (
	StatusPending ResultStatus = "PENDING"
	StatusWin     ResultStatus = "WIN"
	StatusLoss    ResultStatus = "LOSS"
)

// UpdatedBy records which declaration last touched a bid.
type UpdatedBy string

const (
	UpdatedByPending UpdatedBy = "PENDING"
	UpdatedByOpen    UpdatedBy = "OPEN"
	UpdatedByClose   UpdatedBy = "CLOSE"
)

// normalizeName upper-cases a command argument and maps underscores to spaces,
// so "open_pana" and "OPEN PANA" name the same value.
func normalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseGameType resolves a user-supplied game type name.
func ParseGameType(s string) (GameType, bool) {
	name := normalizeName(s)
	if name == "TWO DIGIT PANA" {
		return GameTypeTwoDigitPana, true
	}
	for _, gt := range AllGameTypes() {
		if string(gt) == name {
			return gt, true
		}
	}
	return "", false
}

// ParseRateType resolves a user-supplied rate class name.
func ParseRateType(s string) (RateType, bool) {
	name := normalizeName(s)
	for _, rt := range AllRateTypes() {
		if string(rt) == name {
			return rt, true
		}
	}
	return "", false
}

// ParseCategory resolves a user-supplied game category name.
func ParseCategory(s string) (GameCategory, bool) {
	switch GameCategory(normalizeName(s)) {
	case CategoryDayGame:
		return CategoryDayGame, true
	case CategoryQuickDhanLaxmi:
		return CategoryQuickDhanLaxmi, true
	case CategoryQuickMahaLaxmi:
		return CategoryQuickMahaLaxmi, true
	}
	return "", false
}

// ParseSession resolves OPEN or CLOSE.
func ParseSession(s string) (GameSession, bool) {
	switch GameSession(normalizeName(s)) {
	case SessionOpen:
		return SessionOpen, true
	case SessionClose:
		return SessionClose, true
	}
	return "", false
}
