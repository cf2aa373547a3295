package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"matka-bot/internal/model"
)

// memState is the whole database of memStore.
type memState struct {
	users   map[int64]model.User
	games   map[int64]model.Game
	rates   map[int64]map[model.RateType]int64
	results map[resultKey]model.GameResult
	bids    map[int64]model.Bid
	txs     []model.Transaction
	nextID  int64

	dayLocks int // game-day locks taken by committed units of work
}

type resultKey struct {
	gameID int64
	day    string
}

func keyOf(gameID int64, day time.Time) resultKey {
	return resultKey{gameID: gameID, day: day.Format(DayLayout)}
}

func newMemState() *memState {
	return &memState{
		users:   make(map[int64]model.User),
		games:   make(map[int64]model.Game),
		rates:   make(map[int64]map[model.RateType]int64),
		results: make(map[resultKey]model.GameResult),
		bids:    make(map[int64]model.Bid),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.games {
		c.games[k] = v
	}
	for k, v := range s.rates {
		m := make(map[model.RateType]int64, len(v))
		for rt, p := range v {
			m[rt] = p
		}
		c.rates[k] = m
	}
	for k, v := range s.results {
		c.results[k] = v
	}
	for k, v := range s.bids {
		c.bids[k] = v
	}
	c.txs = append([]model.Transaction(nil), s.txs...)
	c.nextID = s.nextID
	c.dayLocks = s.dayLocks
	return c
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// memStore is an in-memory Store. WithTx works on a copy of the state and
// swaps it in on success, so a failed unit of work leaves nothing behind.
type memStore struct {
	mu   *sync.Mutex
	root **memState
	tx   *memState // set inside WithTx
}

func newMemStore() *memStore {
	st := newMemState()
	return &memStore{mu: &sync.Mutex{}, root: &st}
}

// view runs fn against the current state, holding the mutex outside a transaction.
func (m *memStore) view(fn func(s *memState) error) error {
	if m.tx != nil {
		return fn(m.tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(*m.root)
}

func (m *memStore) Users() UserRepository { return memUsers{m} }
func (m *memStore) Transactions() TransactionRepository { return memTransactions{m} }
func (m *memStore) Bids() BidRepository { return memBids{m} }
func (m *memStore) Results() ResultRepository { return memResults{m} }
func (m *memStore) Rates() RateRepository { return memRates{m} }
func (m *memStore) Games() GameRepository { return memGames{m} }

func (m *memStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if m.tx != nil {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := (*m.root).clone()
	if err := fn(&memStore{mu: m.mu, root: m.root, tx: work}); err != nil {
		return err
	}
	*m.root = work
	return nil
}

// snapshot returns a copy of the committed state for assertions.
func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*m.root).clone()
}

// insertBid stores a bid as-is, bypassing placement checks.
func (m *memStore) insertBid(b model.Bid) model.Bid {
	_ = m.view(func(s *memState) error {
		b.ID = s.id()
		s.bids[b.ID] = b
		return nil
	})
	return b
}

type memUsers struct{ m *memStore }

func (r memUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := r.m.view(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r memUsers) GetOrCreate(ctx context.Context, id int64, username string) (*model.User, bool, error) {
	var (
		out     model.User
		created bool
	)
	err := r.m.view(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			u = model.User{TelegramID: id, Username: username, CreatedAt: time.Now()}
			s.users[id] = u
			created = true
		}
		out = u
		return nil
	})
	return &out, created, err
}

func (r memUsers) Debit(ctx context.Context, id int64, amount int64) (model.BalanceChange, error) {
	var change model.BalanceChange
	err := r.m.view(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		if u.Balance < amount {
			return ErrInsufficientBalance
		}
		change.Previous = u.Balance
		u.Balance -= amount
		change.Current = u.Balance
		s.users[id] = u
		return nil
	})
	return change, err
}

func (r memUsers) Adjust(ctx context.Context, id int64, delta int64) (model.BalanceChange, error) {
	var change model.BalanceChange
	err := r.m.view(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		change.Previous = u.Balance
		u.Balance += delta
		change.Current = u.Balance
		s.users[id] = u
		return nil
	})
	return change, err
}

type memTransactions struct{ m *memStore }

func (r memTransactions) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	var out model.Transaction
	err := r.m.view(func(s *memState) error {
		out = *tx
		out.ID = s.id()
		out.CreatedAt = time.Now()
		s.txs = append(s.txs, out)
		return nil
	})
	return &out, err
}

func (r memTransactions) CreateReversal(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	var out model.Transaction
	err := r.m.view(func(s *memState) error {
		for _, t := range s.txs {
			if t.ReversalOf != nil && *t.ReversalOf == *tx.ReversalOf {
				return ErrAlreadyReversed
			}
		}
		out = *tx
		out.ID = s.id()
		out.CreatedAt = time.Now()
		s.txs = append(s.txs, out)
		return nil
	})
	return &out, err
}

func (r memTransactions) ListUnreversedWins(ctx context.Context, gameID int64, day time.Time, stage string) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.m.view(func(s *memState) error {
		reversed := make(map[int64]bool)
		for _, t := range s.txs {
			if t.ReversalOf != nil {
				reversed[*t.ReversalOf] = true
			}
		}
		for _, t := range s.txs {
			if t.Type != model.TxTypeWin || t.Stage == nil || *t.Stage != stage || reversed[t.ID] || t.BidID == nil {
				continue
			}
			b := s.bids[*t.BidID]
			if b.GameID == gameID && b.ResultDeclareDate.Equal(day) {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (r memTransactions) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.m.view(func(s *memState) error {
		for i := len(s.txs) - 1; i >= 0; i-- {
			if s.txs[i].UserID == userID {
				out = append(out, s.txs[i])
			}
		}
		return nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type memBids struct{ m *memStore }

func (r memBids) Create(ctx context.Context, bid *model.Bid) (*model.Bid, error) {
	var out model.Bid
	err := r.m.view(func(s *memState) error {
		out = *bid
		out.ID = s.id()
		out.CreatedAt = time.Now()
		s.bids[out.ID] = out
		return nil
	})
	return &out, err
}

func (r memBids) GetByID(ctx context.Context, id int64) (*model.Bid, error) {
	var out *model.Bid
	err := r.m.view(func(s *memState) error {
		if b, ok := s.bids[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func sortedBids(s *memState, keep func(model.Bid) bool) []model.Bid {
	var out []model.Bid
	for _, b := range s.bids {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func touched(u model.UpdatedBy, by []model.UpdatedBy) bool {
	for _, t := range by {
		if t == u {
			return true
		}
	}
	return false
}

func (r memBids) ListUnsettled(ctx context.Context, gameID int64, day time.Time, by []model.UpdatedBy) ([]model.Bid, error) {
	var out []model.Bid
	err := r.m.view(func(s *memState) error {
		out = sortedBids(s, func(b model.Bid) bool {
			return b.GameID == gameID && b.ResultDeclareDate.Equal(day) &&
				b.ResultStatus == model.StatusPending && touched(b.UpdatedBy, by)
		})
		return nil
	})
	return out, err
}

func (r memBids) ApplyOutcome(ctx context.Context, id int64, status model.ResultStatus, win int64,
	updatedBy model.UpdatedBy, by []model.UpdatedBy) (bool, error) {
	changed := false
	err := r.m.view(func(s *memState) error {
		b, ok := s.bids[id]
		if !ok || b.ResultStatus != model.StatusPending || !touched(b.UpdatedBy, by) {
			return nil
		}
		b.ResultStatus, b.WinAmount, b.UpdatedBy = status, win, updatedBy
		s.bids[id] = b
		changed = true
		return nil
	})
	return changed, err
}

func (r memBids) MarkTouched(ctx context.Context, ids []int64, updatedBy model.UpdatedBy) (int64, error) {
	var n int64
	err := r.m.view(func(s *memState) error {
		for _, id := range ids {
			if b, ok := s.bids[id]; ok && b.ResultStatus == model.StatusPending {
				b.UpdatedBy = updatedBy
				s.bids[id] = b
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memBids) Reset(ctx context.Context, gameID int64, day time.Time, from, to model.UpdatedBy) (int64, error) {
	var n int64
	err := r.m.view(func(s *memState) error {
		for id, b := range s.bids {
			if b.GameID == gameID && b.ResultDeclareDate.Equal(day) && b.UpdatedBy == from {
				b.ResultStatus, b.WinAmount, b.UpdatedBy = model.StatusPending, 0, to
				s.bids[id] = b
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memBids) List(ctx context.Context, f model.BidFilter) ([]model.Bid, error) {
	var out []model.Bid
	err := r.m.view(func(s *memState) error {
		out = sortedBids(s, func(b model.Bid) bool {
			return (f.Day == nil || b.ResultDeclareDate.Equal(*f.Day)) &&
				(f.GameID == nil || b.GameID == *f.GameID) &&
				(f.UserID == nil || b.UserID == *f.UserID) &&
				(f.Session == nil || b.GameSession == *f.Session) &&
				(f.Status == nil || b.ResultStatus == *f.Status)
		})
		return nil
	})
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

type memResults struct{ m *memStore }

func (r memResults) LockGameDay(ctx context.Context, gameID int64, day time.Time) error {
	if r.m.tx == nil {
		return fmt.Errorf("game-day lock for %d outside a transaction", gameID)
	}
	r.m.tx.dayLocks++
	return nil
}

func (r memResults) Get(ctx context.Context, gameID int64, day time.Time) (*model.GameResult, error) {
	var out *model.GameResult
	err := r.m.view(func(s *memState) error {
		res, ok := s.results[keyOf(gameID, day)]
		if !ok {
			return ErrResultNotFound
		}
		out = &res
		return nil
	})
	return out, err
}

func (r memResults) Upsert(ctx context.Context, result *model.GameResult) (*model.GameResult, error) {
	var out model.GameResult
	err := r.m.view(func(s *memState) error {
		k := keyOf(result.GameID, result.ResultDeclareDate)
		out = *result
		if cur, ok := s.results[k]; ok {
			out.ID = cur.ID
		} else {
			out.ID = s.id()
		}
		out.UpdatedAt = time.Now()
		s.results[k] = out
		return nil
	})
	return &out, err
}

func (r memResults) Delete(ctx context.Context, gameID int64, day time.Time) error {
	return r.m.view(func(s *memState) error {
		delete(s.results, keyOf(gameID, day))
		return nil
	})
}

type memRates struct{ m *memStore }

func (r memRates) Seed(ctx context.Context, gameID int64, rates map[model.RateType]int64) error {
	return r.m.view(func(s *memState) error {
		m := make(map[model.RateType]int64, len(rates))
		for rt, p := range rates {
			m[rt] = p
		}
		s.rates[gameID] = m
		return nil
	})
}

func (r memRates) ListByGame(ctx context.Context, gameID int64) ([]model.GameRate, error) {
	var out []model.GameRate
	err := r.m.view(func(s *memState) error {
		for rt, p := range s.rates[gameID] {
			out = append(out, model.GameRate{GameID: gameID, GameType: rt, GamePrice: p})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].GameType < out[j].GameType })
	return out, err
}

func (r memRates) UpdatePrice(ctx context.Context, gameID int64, rt model.RateType, price int64) (*model.GameRate, error) {
	var out *model.GameRate
	err := r.m.view(func(s *memState) error {
		if _, ok := s.rates[gameID][rt]; !ok {
			return ErrRateNotFound
		}
		s.rates[gameID][rt] = price
		out = &model.GameRate{GameID: gameID, GameType: rt, GamePrice: price}
		return nil
	})
	return out, err
}

type memGames struct{ m *memStore }

func (r memGames) Create(ctx context.Context, name string, category model.GameCategory) (*model.Game, error) {
	var out model.Game
	err := r.m.view(func(s *memState) error {
		for _, g := range s.games {
			if g.Name == name {
				return ErrGameExists
			}
		}
		out = model.Game{ID: s.id(), Name: name, Category: category, CreatedAt: time.Now()}
		s.games[out.ID] = out
		return nil
	})
	return &out, err
}

func (r memGames) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	var out *model.Game
	err := r.m.view(func(s *memState) error {
		g, ok := s.games[id]
		if !ok {
			return ErrGameNotFound
		}
		out = &g
		return nil
	})
	return out, err
}

func (r memGames) List(ctx context.Context) ([]model.Game, error) {
	var out []model.Game
	err := r.m.view(func(s *memState) error {
		for _, g := range s.games {
			out = append(out, g)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memGames) RefreshResultCache(ctx context.Context, gameID int64) error {
	return r.m.view(func(s *memState) error {
		g, ok := s.games[gameID]
		if !ok {
			return ErrGameNotFound
		}
		var latest *model.GameResult
		for _, res := range s.results {
			if res.GameID != gameID {
				continue
			}
			if latest == nil || res.ResultDeclareDate.After(latest.ResultDeclareDate) {
				res := res
				latest = &res
			}
		}
		g.LastOpenNumber, g.LastCloseNumber, g.LastResultNumber = nil, nil, nil
		if latest != nil {
			g.LastOpenNumber = latest.OpenResultNumber
			g.LastCloseNumber = latest.CloseResultNumber
			g.LastResultNumber = latest.GameResultNumber
		}
		s.games[gameID] = g
		return nil
	})
}
