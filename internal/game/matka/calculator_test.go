package matka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"matka-bot/internal/model"
)

func mustParse(t *testing.T, raw string) Number {
	t.Helper()
	n, err := Parse(raw)
	require.NoError(t, err)
	return n
}

func TestEvaluate_OpenStage(t *testing.T) {
	draw := OpenDraw("138") // result digit 2
	rules := DefaultRules()

	tests := []struct {
		name    string
		number  string
		session model.GameSession
		want    model.ResultStatus
	}{
		{"open digit hit", "2X", model.SessionOpen, model.StatusWin},
		{"open digit miss", "3X", model.SessionOpen, model.StatusLoss},
		{"close digit waits", "X2", model.SessionClose, model.StatusPending},
		{"open pana hit", "138X", model.SessionOpen, model.StatusWin},
		{"open pana miss", "183X", model.SessionOpen, model.StatusLoss},
		{"close pana waits", "X138", model.SessionClose, model.StatusPending},
		{"plain pana open session", "138", model.SessionOpen, model.StatusWin},
		{"plain pana close session hit", "138", model.SessionClose, model.StatusWin},
		{"plain pana close session miss", "147", model.SessionClose, model.StatusLoss},
		{"jodi first digit hit", "23", model.SessionOpen, model.StatusPending},
		{"jodi first digit miss", "32", model.SessionOpen, model.StatusLoss},
		{"open half sangam hit", "2X456", model.SessionOpen, model.StatusPending},
		{"open half sangam miss", "3X456", model.SessionOpen, model.StatusLoss},
		{"close half sangam panel hit", "138X5", model.SessionClose, model.StatusPending},
		{"close half sangam panel miss", "139X5", model.SessionClose, model.StatusLoss},
		{"close half sangam eager win", "139X2", model.SessionClose, model.StatusWin},
		{"full sangam open hit", "138X456", model.SessionOpen, model.StatusPending},
		{"full sangam open miss", "139X456", model.SessionOpen, model.StatusLoss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Evaluate(mustParse(t, tt.number), tt.session, draw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_EagerFlagOff(t *testing.T) {
	rules := Rules{EagerCloseHalfSangamWin: false}
	draw := OpenDraw("138")

	assert.Equal(t, model.StatusLoss, rules.Evaluate(mustParse(t, "139X2"), model.SessionClose, draw))
	assert.Equal(t, model.StatusPending, rules.Evaluate(mustParse(t, "138X2"), model.SessionClose, draw))
}

func TestEvaluate_CloseStage(t *testing.T) {
	draw := CloseDraw("138", "470") // digits 2 and 1, jodi 21
	rules := DefaultRules()

	tests := []struct {
		name    string
		number  string
		session model.GameSession
		want    model.ResultStatus
	}{
		{"close digit hit", "X1", model.SessionClose, model.StatusWin},
		{"close digit miss", "X2", model.SessionClose, model.StatusLoss},
		{"close pana hit", "X470", model.SessionClose, model.StatusWin},
		{"close pana miss", "X471", model.SessionClose, model.StatusLoss},
		{"plain pana matches close panel", "470", model.SessionClose, model.StatusWin},
		{"plain pana misses close panel", "138", model.SessionOpen, model.StatusLoss},
		{"jodi hit", "21", model.SessionOpen, model.StatusWin},
		{"jodi miss", "23", model.SessionOpen, model.StatusLoss},
		{"open half sangam hit", "2X470", model.SessionOpen, model.StatusWin},
		{"open half sangam wrong panel", "2X471", model.SessionOpen, model.StatusLoss},
		{"close half sangam hit", "138X1", model.SessionClose, model.StatusWin},
		{"close half sangam wrong digit", "138X3", model.SessionClose, model.StatusLoss},
		{"full sangam hit", "138X470", model.SessionOpen, model.StatusWin},
		{"full sangam close miss", "138X471", model.SessionOpen, model.StatusLoss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Evaluate(mustParse(t, tt.number), tt.session, draw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_PlainPanaFollowsSession(t *testing.T) {
	rules := DefaultRules()
	rules.PlainPanaFollowsSession = true

	open := OpenDraw("138")
	assert.Equal(t, model.StatusPending, rules.Evaluate(mustParse(t, "147"), model.SessionClose, open))
	assert.Equal(t, model.StatusPending, rules.Evaluate(mustParse(t, "138"), model.SessionClose, open))
	assert.Equal(t, model.StatusWin, rules.Evaluate(mustParse(t, "138"), model.SessionOpen, open))

	closed := CloseDraw("138", "470")
	assert.Equal(t, model.StatusWin, rules.Evaluate(mustParse(t, "470"), model.SessionClose, closed))
	assert.Equal(t, model.StatusLoss, rules.Evaluate(mustParse(t, "138"), model.SessionClose, closed))
	assert.Equal(t, model.StatusWin, rules.Evaluate(mustParse(t, "138"), model.SessionOpen, closed))
}

func TestEvaluate_OpenHalfSangamUsesLastDigitOfSum(t *testing.T) {
	draw := CloseDraw("789", "470") // 7+8+9 = 24, open digit 4
	rules := DefaultRules()

	assert.Equal(t, model.StatusWin, rules.Evaluate(mustParse(t, "4X470"), model.SessionOpen, draw))
	assert.Equal(t, model.StatusLoss, rules.Evaluate(mustParse(t, "2X470"), model.SessionOpen, draw))
}

func TestEvaluate_JodiMatchesShortOpenResult(t *testing.T) {
	draw := OpenDraw("23") // result digit 5
	rules := DefaultRules()

	assert.Equal(t, model.StatusWin, rules.Evaluate(mustParse(t, "23"), model.SessionOpen, draw))
	assert.Equal(t, model.StatusPending, rules.Evaluate(mustParse(t, "51"), model.SessionOpen, draw))
	assert.Equal(t, model.StatusLoss, rules.Evaluate(mustParse(t, "32"), model.SessionOpen, draw))
}

func TestDecidedAtOpen(t *testing.T) {
	rules := DefaultRules()
	assert.True(t, rules.DecidedAtOpen(mustParse(t, "3X"), model.SessionOpen))
	assert.False(t, rules.DecidedAtOpen(mustParse(t, "X3"), model.SessionClose))
	assert.False(t, rules.DecidedAtOpen(mustParse(t, "X138"), model.SessionClose))
	assert.True(t, rules.DecidedAtOpen(mustParse(t, "147"), model.SessionClose))
	assert.True(t, rules.DecidedAtOpen(mustParse(t, "23"), model.SessionClose))

	rules.PlainPanaFollowsSession = true
	assert.False(t, rules.DecidedAtOpen(mustParse(t, "147"), model.SessionClose))
	assert.True(t, rules.DecidedAtOpen(mustParse(t, "147"), model.SessionOpen))
}

func TestEvaluate_UnpaddedJodi(t *testing.T) {
	// open digit 0, close digit 5: canonical jodi "05", raw jodi "5"
	draw := CloseDraw("190", "230")
	assert.Equal(t, "05", draw.Jodi)
	assert.Equal(t, "5", draw.RawJodi)
	assert.Equal(t, model.StatusWin, DefaultRules().Evaluate(mustParse(t, "05"), model.SessionOpen, draw))
}

func bid(gameType model.GameType, rateType model.RateType, session model.GameSession, number string, amount int64) model.Bid {
	return model.Bid{
		ID:           1,
		UserID:       42,
		GameID:       7,
		GameSession:  session,
		GameType:     gameType,
		GameRateType: rateType,
		GameNumber:   number,
		GameAmount:   amount,
		ResultStatus: model.StatusPending,
		UpdatedBy:    model.UpdatedByPending,
	}
}

func TestSettle_OpenPanaWin(t *testing.T) {
	rates := RateTable(DefaultRates)
	b := bid(model.GameTypeOpenPana, model.RateSinglePana, model.SessionOpen, "138X", 10)

	out := DefaultRules().Settle(b, rates, OpenDraw("138"))
	require.NoError(t, out.Err)
	assert.Equal(t, model.StatusWin, out.Status)
	assert.Equal(t, int64(1600), out.WinAmount)
	assert.True(t, out.Changed())
}

func TestSettle_JodiPendingThenLoss(t *testing.T) {
	rates := RateTable(DefaultRates)
	b := bid(model.GameTypeJodi, model.RateJodi, model.SessionOpen, "23", 5)

	out := DefaultRules().Settle(b, rates, OpenDraw("138"))
	require.NoError(t, out.Err)
	assert.Equal(t, model.StatusPending, out.Status)
	assert.False(t, out.Changed())

	out = DefaultRules().Settle(b, rates, CloseDraw("138", "47"))
	require.NoError(t, out.Err)
	assert.Equal(t, model.StatusLoss, out.Status)
	assert.Zero(t, out.WinAmount)
}

func TestSettle_Isolation(t *testing.T) {
	rates := RateTable(DefaultRates)
	rules := DefaultRules()
	draw := OpenDraw("138")

	corrupt := bid(model.GameTypeOpenPana, model.RateSinglePana, model.SessionOpen, "13?X", 10)
	out := rules.Settle(corrupt, rates, draw)
	assert.ErrorIs(t, out.Err, ErrMalformedNumber)
	assert.Equal(t, model.StatusPending, out.Status)
	assert.False(t, out.Changed())

	mismatched := bid(model.GameTypeOpenPana, model.RateDoublePana, model.SessionOpen, "138X", 10)
	out = rules.Settle(mismatched, rates, draw)
	assert.ErrorIs(t, out.Err, ErrClassification)
	assert.Equal(t, model.StatusPending, out.Status)

	missingRate := RateTable{model.RateDigit: 10}
	out = rules.Settle(bid(model.GameTypeOpenPana, model.RateSinglePana, model.SessionOpen, "138X", 10), missingRate, draw)
	assert.ErrorIs(t, out.Err, ErrRateLookup)
	assert.Equal(t, model.StatusPending, out.Status)
	assert.Zero(t, out.WinAmount)
}

// TestSettleWinAmountProperty: a settled bid carries a win amount exactly
// when it is a WIN, and that amount is rate × wager.
func TestSettleWinAmountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		open := digitString(t, 3, "open")
		closePanel := digitString(t, 3, "close")
		digit := digitString(t, 1, "digit")
		amount := rapid.Int64Range(1, 10000).Draw(t, "amount")

		b := bid(model.GameTypeOpen, model.RateDigit, model.SessionOpen, digit+"X", amount)
		if rapid.Bool().Draw(t, "closeSide") {
			b = bid(model.GameTypeClose, model.RateDigit, model.SessionClose, "X"+digit, amount)
		}

		rates := RateTable(DefaultRates)
		for _, draw := range []Draw{OpenDraw(open), CloseDraw(open, closePanel)} {
			out := DefaultRules().Settle(b, rates, draw)
			if out.Err != nil {
				t.Fatalf("Settle failed: %v", out.Err)
			}
			switch out.Status {
			case model.StatusWin:
				if out.WinAmount != 10*amount {
					t.Fatalf("win amount %d, want %d", out.WinAmount, 10*amount)
				}
			default:
				if out.WinAmount != 0 {
					t.Fatalf("non-winning bid has win amount %d", out.WinAmount)
				}
			}
		}
	})
}
