package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matka-bot/internal/model"
)

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, 3, DefaultRegistry.Count())
	assert.Equal(t, []model.GameCategory{
		model.CategoryDayGame, model.CategoryQuickDhanLaxmi, model.CategoryQuickMahaLaxmi,
	}, DefaultRegistry.Names())

	c, ok := GetCategory(model.CategoryDayGame)
	require.True(t, ok)
	assert.True(t, c.Offers(model.GameTypeFullSangam))
	assert.Len(t, c.GameTypes(), len(model.AllGameTypes()))
	assert.Len(t, c.DefaultRates(), 7)

	_, ok = GetCategory(model.GameCategory("NIGHT GAME"))
	assert.False(t, ok)
}

func TestQuickDhanLaxmiExcludesSangams(t *testing.T) {
	c, ok := GetCategory(model.CategoryQuickDhanLaxmi)
	require.True(t, ok)

	assert.False(t, c.Offers(model.GameTypeOpenHalfSangam))
	assert.False(t, c.Offers(model.GameTypeCloseHalfSangam))
	assert.False(t, c.Offers(model.GameTypeFullSangam))
	assert.True(t, c.Offers(model.GameTypeJodi))
	assert.NotContains(t, c.GameTypes(), model.GameTypeFullSangam)

	rates := c.DefaultRates()
	assert.Len(t, rates, 5)
	assert.NotContains(t, rates, model.RateHalfSangam)
	assert.NotContains(t, rates, model.RateFullSangam)
	assert.Equal(t, int64(160), rates[model.RateSinglePana])
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(NewCategory("", "", nil, nil)))

	require.NoError(t, r.Register(NewCategory("NIGHT GAME", "late market", nil, nil)))
	c, ok := r.Get("NIGHT GAME")
	require.True(t, ok)
	assert.Equal(t, "late market", c.Description())
	assert.False(t, c.Offers(model.GameType("LUCKY SEVEN")))
}
