package game

import (
	"slices"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
)

// sangamTypes are the composite bids that need both declarations.
var sangamTypes = []model.GameType{
	model.GameTypeOpenHalfSangam,
	model.GameTypeCloseHalfSangam,
	model.GameTypeFullSangam,
}

type category struct {
	name          model.GameCategory
	description   string
	excludedTypes []model.GameType
	excludedRates []model.RateType
}

// NewCategory builds a category that offers every game type and rate class
// except the excluded ones.
func NewCategory(name model.GameCategory, description string, excludedTypes []model.GameType, excludedRates []model.RateType) Category {
	return &category{
		name:          name,
		description:   description,
		excludedTypes: excludedTypes,
		excludedRates: excludedRates,
	}
}

func (c *category) Name() model.GameCategory { return c.name }

func (c *category) Description() string { return c.description }

func (c *category) Offers(gameType model.GameType) bool {
	return slices.Contains(model.AllGameTypes(), gameType) && !slices.Contains(c.excludedTypes, gameType)
}

func (c *category) GameTypes() []model.GameType {
	types := make([]model.GameType, 0, len(model.AllGameTypes()))
	for _, gt := range model.AllGameTypes() {
		if !slices.Contains(c.excludedTypes, gt) {
			types = append(types, gt)
		}
	}
	return types
}

func (c *category) DefaultRates() map[model.RateType]int64 {
	rates := make(map[model.RateType]int64, len(matka.DefaultRates))
	for rt, price := range matka.DefaultRates {
		if !slices.Contains(c.excludedRates, rt) {
			rates[rt] = price
		}
	}
	return rates
}

// Built-in categories.
var (
	DayGame = NewCategory(model.CategoryDayGame,
		"Daily market with open and close declarations", nil, nil)

	QuickDhanLaxmi = NewCategory(model.CategoryQuickDhanLaxmi,
		"Quick market without sangam bids", sangamTypes,
		[]model.RateType{model.RateHalfSangam, model.RateFullSangam})

	QuickMahaLaxmi = NewCategory(model.CategoryQuickMahaLaxmi,
		"Quick market with the full bid menu", nil, nil)
)

func init() {
	for _, c := range []Category{DayGame, QuickDhanLaxmi, QuickMahaLaxmi} {
		if err := Register(c); err != nil {
			panic(err)
		}
	}
}
