package matka

import (
	"fmt"
	"slices"
	"strings"

	"matka-bot/internal/model"
)

// DefaultRates is the payout table seeded into every new game.
var DefaultRates = map[model.RateType]int64{
	model.RateDigit:      10,
	model.RateJodi:       100,
	model.RateSinglePana: 160,
	model.RateDoublePana: 320,
	model.RateTriplePana: 1000,
	model.RateHalfSangam: 1500,
	model.RateFullSangam: 15000,
}

// RateTable holds the payout multipliers of one game.
type RateTable map[model.RateType]int64

// NewRateTable builds a table from stored rate rows.
func NewRateTable(rows []model.GameRate) RateTable {
	t := make(RateTable, len(rows))
	for _, r := range rows {
		t[r.GameType] = r.GamePrice
	}
	return t
}

// Lookup returns the multiplier for a rate class. A missing row is a
// configuration error and is never defaulted.
func (t RateTable) Lookup(rt model.RateType) (int64, error) {
	price, ok := t[rt]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrRateLookup, rt)
	}
	return price, nil
}

// Payout returns rate × amount for a winning bid.
func (t RateTable) Payout(rt model.RateType, amount int64) (int64, error) {
	price, err := t.Lookup(rt)
	if err != nil {
		return 0, err
	}
	return price * amount, nil
}

// ReportSession selects which bids a report covers and how they are keyed.
type ReportSession string

const (
	ReportOpen       ReportSession = "OPEN"
	ReportClose      ReportSession = "CLOSE"
	ReportOpenAll    ReportSession = "OPEN-ALL"
	ReportCloseAll   ReportSession = "CLOSE-ALL"
	ReportHalfSangam ReportSession = "HALF-SANGAM"
	ReportFullSangam ReportSession = "FULL-SANGAM"
	ReportJodi       ReportSession = "JODI"
)

// AllReportSessions lists the report sessions in menu order.
func AllReportSessions() []ReportSession {
	return []ReportSession{
		ReportOpen, ReportClose, ReportOpenAll, ReportCloseAll,
		ReportHalfSangam, ReportFullSangam, ReportJodi,
	}
}

// ParseReportSession resolves a report session name, case-insensitively.
// Underscores are accepted in place of dashes.
func ParseReportSession(s string) (ReportSession, bool) {
	name := strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	for _, rs := range AllReportSessions() {
		if strings.EqualFold(string(rs), name) {
			return rs, true
		}
	}
	return "", false
}

// rateRule is one row of the report remapping table. A rule matches when the
// session is listed, the key length is listed (empty = any) and the stored class is
// listed (nil = any).
type rateRule struct {
	sessions []ReportSession
	keyLen   []int
	stored   []model.RateType
	resolve  func(stored model.RateType, key string) (model.RateType, error)
}

func fixed(rt model.RateType) func(model.RateType, string) (model.RateType, error) {
	return func(model.RateType, string) (model.RateType, error) { return rt, nil }
}

func keepStored(stored model.RateType, _ string) (model.RateType, error) {
	return stored, nil
}

func panelOfKey(_ model.RateType, key string) (model.RateType, error) {
	return ClassifyPanel(StripPlaceholder(key))
}

var allSessions = []ReportSession{ReportOpenAll, ReportCloseAll}

// reportRateRules is evaluated top to bottom; the first match wins.
var reportRateRules = []rateRule{
	{
		sessions: allSessions,
		keyLen:   []int{2},
		stored:   []model.RateType{model.RateJodi, model.RateHalfSangam, model.RateDigit},
		resolve:  fixed(model.RateDigit),
	},
	{
		sessions: allSessions,
		keyLen:   []int{3, 4},
		resolve:  panelOfKey,
	},
	{
		sessions: allSessions,
		resolve:  keepStored,
	},
	{
		sessions: []ReportSession{ReportJodi},
		resolve:  fixed(model.RateJodi),
	},
	{
		sessions: []ReportSession{ReportHalfSangam},
		resolve:  fixed(model.RateHalfSangam),
	},
	{
		sessions: []ReportSession{ReportFullSangam},
		resolve:  fixed(model.RateFullSangam),
	},
	{
		sessions: []ReportSession{ReportOpen, ReportClose},
		resolve:  keepStored,
	},
}

// ReportRateType resolves the rate class a report uses for a bid. It differs
// from the stored class: under OPEN-ALL and CLOSE-ALL a 2-character number
// stored as JODI, HALF SANGAM or DIGIT is priced as DIGIT, and 3 or 4
// character numbers are priced by their own panel.
func ReportRateType(session ReportSession, stored model.RateType, rawNumber string) (model.RateType, error) {
	for _, rule := range reportRateRules {
		if !rule.matches(session, stored, rawNumber) {
			continue
		}
		return rule.resolve(stored, rawNumber)
	}
	return "", fmt.Errorf("%w: no report rate for session %q", ErrRateLookup, session)
}

func (r rateRule) matches(session ReportSession, stored model.RateType, raw string) bool {
	if !slices.Contains(r.sessions, session) {
		return false
	}
	if len(r.keyLen) > 0 && !slices.Contains(r.keyLen, len(raw)) {
		return false
	}
	if r.stored != nil && !slices.Contains(r.stored, stored) {
		return false
	}
	return true
}
