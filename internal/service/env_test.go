package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"matka-bot/internal/game"
	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/pkg/events"
	"matka-bot/internal/pkg/lock"
)

var testDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// recorder captures notifications and events.
type recorder struct {
	mu     sync.Mutex
	notes  []string
	events []events.Event
}

func (r *recorder) Notify(token, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, token)
}

func (r *recorder) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

type testEnv struct {
	store      *memStore
	rec        *recorder
	accounts   *AccountService
	games      *GameService
	rates      *RateService
	bids       *BidService
	settlement *SettlementService
	results    *ResultService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	rec := &recorder{}
	userLock := lock.NewUserLock()
	clock := Clock{
		Now:      func() time.Time { return testDay.Add(12 * time.Hour) },
		Location: time.UTC,
	}
	settlement := NewSettlementService(store, userLock, matka.DefaultRules(), 4, rec, rec)

	return &testEnv{
		store:      store,
		rec:        rec,
		accounts:   NewAccountService(store, userLock),
		games:      NewGameService(store, game.DefaultRegistry),
		rates:      NewRateService(store),
		bids:       NewBidService(store, game.DefaultRegistry, userLock, clock, BidLimits{MinAmount: 1}, matka.DefaultRules()),
		settlement: settlement,
		results:    NewResultService(store, settlement, userLock, lock.NewGameDayLock(), time.Second, rec),
		reports:    NewReportService(store),
	}
}

func (e *testEnv) game(t *testing.T, name string, category model.GameCategory) *model.Game {
	t.Helper()
	g, err := e.games.CreateGame(context.Background(), name, category)
	require.NoError(t, err)
	return g
}

// player creates a user holding balance.
func (e *testEnv) player(t *testing.T, id int64, balance int64) {
	t.Helper()
	ctx := context.Background()
	_, _, err := e.accounts.EnsureUser(ctx, id, "player")
	require.NoError(t, err)
	if balance > 0 {
		_, err = e.accounts.AdminCredit(ctx, id, balance, 1)
		require.NoError(t, err)
	}
}

func (e *testEnv) bid(t *testing.T, userID, gameID int64, session model.GameSession, gameType model.GameType, number string, amount int64) *model.Bid {
	t.Helper()
	b, err := e.bids.PlaceBid(context.Background(), PlaceBidRequest{
		UserID:   userID,
		GameID:   gameID,
		Session:  session,
		GameType: gameType,
		Number:   number,
		Amount:   amount,
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := e.accounts.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) stored(t *testing.T, bidID int64) model.Bid {
	t.Helper()
	b, ok := e.store.snapshot().bids[bidID]
	require.True(t, ok, "bid %d not stored", bidID)
	return b
}
