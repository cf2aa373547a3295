package report

import (
	"github.com/shopspring/decimal"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
)

// Pay-in divisors applied to sangam rates by panel class.
var sangamDivisor = map[model.RateType]decimal.Decimal{
	model.RateSinglePana: decimal.NewFromInt(1),
	model.RateDoublePana: decimal.NewFromInt(2),
	model.RateTriplePana: decimal.NewFromInt(4),
}

// Payout multipliers applied to the open panel's pana rate for close half sangams.
var closeHalfSangamMultiplier = map[model.RateType]decimal.Decimal{
	model.RateSinglePana: decimal.NewFromInt(10),
	model.RateDoublePana: decimal.NewFromInt(5),
	model.RateTriplePana: decimal.NewFromFloat(2.5),
}

// halfSangamRate is the effective rate of a half sangam bid. An open half
// sangam divides the HALF SANGAM rate by its close panel's divisor; a close
// half sangam multiplies its open panel's pana rate.
func halfSangamRate(v matka.HalfSangam, rates matka.RateTable) (decimal.Decimal, error) {
	class, err := matka.ClassifyPanel(v.Panel)
	if err != nil {
		return decimal.Zero, err
	}

	if v.Side == matka.SideOpen {
		price, err := rates.Lookup(model.RateHalfSangam)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(price).Div(sangamDivisor[class]), nil
	}

	price, err := rates.Lookup(class)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(price).Mul(closeHalfSangamMultiplier[class]), nil
}

// fullSangamRate divides the FULL SANGAM rate by the divisors of both panels.
func fullSangamRate(v matka.FullSangam, rates matka.RateTable) (decimal.Decimal, error) {
	openClass, err := matka.ClassifyPanel(v.OpenPanel)
	if err != nil {
		return decimal.Zero, err
	}
	closeClass, err := matka.ClassifyPanel(v.ClosePanel)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := rates.Lookup(model.RateFullSangam)
	if err != nil {
		return decimal.Zero, err
	}
	div := sangamDivisor[openClass].Mul(sangamDivisor[closeClass])
	return decimal.NewFromInt(price).Div(div), nil
}
