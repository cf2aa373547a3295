package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matka-bot/internal/game"
	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/pkg/lock"
)

func TestPlaceBid_DebitsWalletAndRecordsLedger(t *testing.T) {
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)

	b := e.bid(t, 100, g.ID, model.SessionOpen, model.GameTypeOpenPana, "138X", 10)

	assert.Equal(t, model.RateSinglePana, b.GameRateType)
	assert.Equal(t, model.StatusPending, b.ResultStatus)
	assert.Equal(t, model.UpdatedByPending, b.UpdatedBy)
	assert.True(t, b.ResultDeclareDate.Equal(testDay))
	assert.Equal(t, int64(990), e.balance(t, 100))

	history, err := e.accounts.History(context.Background(), 100, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.TxTypeBid, history[0].Type)
	assert.Equal(t, model.DirectionDebit, history[0].Direction)
	assert.Equal(t, int64(1000), history[0].PreviousAmount)
	assert.Equal(t, int64(990), history[0].CurrentAmount)
	require.NotNil(t, history[0].BidID)
	assert.Equal(t, b.ID, *history[0].BidID)
}

func TestPlaceBid_ChecksResultUnderGameDayLock(t *testing.T) {
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)
	before := e.store.snapshot().dayLocks

	e.bid(t, 100, g.ID, model.SessionOpen, model.GameTypeJodi, "23", 10)
	assert.Equal(t, before+1, e.store.snapshot().dayLocks)

	_, err := e.results.DeclareOpen(context.Background(), g.ID, testDay, "138")
	require.NoError(t, err)
	locks := e.store.snapshot().dayLocks

	// a rejected bid rolls back, so its lock leaves no trace in committed state
	_, err = e.bids.PlaceBid(context.Background(), PlaceBidRequest{
		UserID: 100, GameID: g.ID, Session: model.SessionOpen,
		GameType: model.GameTypeJodi, Number: "23", Amount: 10,
	})
	assert.ErrorIs(t, err, ErrBettingClosed)
	assert.Equal(t, locks, e.store.snapshot().dayLocks)
	assert.Equal(t, int64(990), e.balance(t, 100))
}

func TestPlaceBid_ClassifiesMotors(t *testing.T) {
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)

	dp := e.bid(t, 100, g.ID, model.SessionOpen, model.GameTypeDPMotor, "123X", 10)
	assert.Equal(t, model.RateDoublePana, dp.GameRateType)

	tp := e.bid(t, 100, g.ID, model.SessionClose, model.GameTypeTPMotor, "X123", 10)
	assert.Equal(t, model.RateTriplePana, tp.GameRateType)
}

func TestPlaceBid_InsufficientBalance(t *testing.T) {
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 200, 5)

	_, err := e.bids.PlaceBid(context.Background(), PlaceBidRequest{
		UserID: 200, GameID: g.ID, Session: model.SessionOpen,
		GameType: model.GameTypeOpen, Number: "2X", Amount: 10,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(5), e.balance(t, 200))

	snap := e.store.snapshot()
	assert.Empty(t, snap.bids)
	for _, tx := range snap.txs {
		assert.NotEqual(t, model.TxTypeBid, tx.Type)
	}
}

func TestPlaceBid_Rejections(t *testing.T) {
	e := newTestEnv(t)
	day := e.game(t, "kalyan", model.CategoryDayGame)
	quick := e.game(t, "dhan", model.CategoryQuickDhanLaxmi)
	e.player(t, 100, 1000)

	tests := []struct {
		name string
		req  PlaceBidRequest
		want error
	}{
		{
			name: "not offered",
			req:  PlaceBidRequest{GameID: quick.ID, Session: model.SessionOpen, GameType: model.GameTypeFullSangam, Number: "123X456", Amount: 10},
			want: ErrGameTypeNotOffered,
		},
		{
			name: "malformed",
			req:  PlaceBidRequest{GameID: day.ID, Session: model.SessionOpen, GameType: model.GameTypeOpenPana, Number: "12a", Amount: 10},
			want: matka.ErrClassification,
		},
		{
			name: "wrong shape",
			req:  PlaceBidRequest{GameID: day.ID, Session: model.SessionOpen, GameType: model.GameTypeJodi, Number: "2X", Amount: 10},
			want: matka.ErrClassification,
		},
		{
			name: "half sangam side",
			req:  PlaceBidRequest{GameID: day.ID, Session: model.SessionOpen, GameType: model.GameTypeOpenHalfSangam, Number: "123X4", Amount: 10},
			want: matka.ErrClassification,
		},
		{
			name: "zero amount",
			req:  PlaceBidRequest{GameID: day.ID, Session: model.SessionOpen, GameType: model.GameTypeOpen, Number: "2X", Amount: 0},
			want: ErrInvalidAmount,
		},
		{
			name: "unknown game",
			req:  PlaceBidRequest{GameID: 999, Session: model.SessionOpen, GameType: model.GameTypeOpen, Number: "2X", Amount: 10},
			want: ErrGameNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.UserID = 100
			_, err := e.bids.PlaceBid(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(1000), e.balance(t, 100))
}

func TestPlaceBid_BettingClosed(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)

	_, err := e.results.DeclareOpen(ctx, g.ID, testDay, "138")
	require.NoError(t, err)

	closed := []PlaceBidRequest{
		{Session: model.SessionOpen, GameType: model.GameTypeOpen, Number: "3X"},
		{Session: model.SessionOpen, GameType: model.GameTypeJodi, Number: "33"},
		{Session: model.SessionOpen, GameType: model.GameTypePana, Number: "123"},
		{Session: model.SessionClose, GameType: model.GameTypePana, Number: "123"},
		{Session: model.SessionClose, GameType: model.GameTypeCloseHalfSangam, Number: "123X4"},
	}
	for _, req := range closed {
		req.UserID, req.GameID, req.Amount = 100, g.ID, 10
		_, err := e.bids.PlaceBid(ctx, req)
		assert.ErrorIs(t, err, ErrBettingClosed, "%s %s", req.GameType, req.Number)
	}

	e.bid(t, 100, g.ID, model.SessionClose, model.GameTypeClose, "X3", 10)
	e.bid(t, 100, g.ID, model.SessionClose, model.GameTypeClosePana, "X123", 10)

	_, err = e.results.DeclareClose(ctx, g.ID, testDay, "47")
	require.NoError(t, err)

	_, err = e.bids.PlaceBid(ctx, PlaceBidRequest{
		UserID: 100, GameID: g.ID, Session: model.SessionClose,
		GameType: model.GameTypeClose, Number: "X4", Amount: 10,
	})
	assert.ErrorIs(t, err, ErrBettingClosed)
}

func TestPlaceBid_PlainPanaFollowsSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)

	rules := matka.DefaultRules()
	rules.PlainPanaFollowsSession = true
	clock := Clock{Now: func() time.Time { return testDay.Add(12 * time.Hour) }, Location: time.UTC}
	bids := NewBidService(e.store, game.DefaultRegistry, lock.NewUserLock(), clock, BidLimits{MinAmount: 1}, rules)

	_, err := e.results.DeclareOpen(ctx, g.ID, testDay, "138")
	require.NoError(t, err)

	req := PlaceBidRequest{UserID: 100, GameID: g.ID, Session: model.SessionClose, GameType: model.GameTypePana, Number: "123", Amount: 10}
	_, err = bids.PlaceBid(ctx, req)
	require.NoError(t, err)

	req.Session = model.SessionOpen
	_, err = bids.PlaceBid(ctx, req)
	assert.ErrorIs(t, err, ErrBettingClosed)
}

func TestListUserBids(t *testing.T) {
	e := newTestEnv(t)
	g := e.game(t, "kalyan", model.CategoryDayGame)
	e.player(t, 100, 1000)
	e.player(t, 101, 1000)

	first := e.bid(t, 100, g.ID, model.SessionOpen, model.GameTypeOpen, "1X", 10)
	second := e.bid(t, 100, g.ID, model.SessionOpen, model.GameTypeOpen, "2X", 10)
	e.bid(t, 101, g.ID, model.SessionOpen, model.GameTypeOpen, "3X", 10)

	bids, err := e.bids.ListUserBids(context.Background(), 100, 10)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, second.ID, bids[0].ID)
	assert.Equal(t, first.ID, bids[1].ID)
}
