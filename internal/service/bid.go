package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"matka-bot/internal/game"
	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/pkg/lock"
	"matka-bot/internal/pkg/metrics"
)

// BidLimits bounds a single wager. MaxAmount 0 means no maximum.
type BidLimits struct {
	MinAmount int64
	MaxAmount int64
}

// PlaceBidRequest is one wager as entered by a player.
type PlaceBidRequest struct {
	UserID   int64
	GameID   int64
	Session  model.GameSession
	GameType model.GameType
	Number   string
	Amount   int64
}

// BidService places bids.
type BidService struct {
	store       Store
	registry    *game.Registry
	userLock    *lock.UserLock
	clock       Clock
	limits      BidLimits
	rules       matka.Rules
	lockTimeout time.Duration
}

// NewBidService creates a new BidService instance.
func NewBidService(
	store Store,
	registry *game.Registry,
	userLock *lock.UserLock,
	clock Clock,
	limits BidLimits,
	rules matka.Rules,
) *BidService {
	return &BidService{
		store:       store,
		registry:    registry,
		userLock:    userLock,
		clock:       clock,
		limits:      limits,
		rules:       rules,
		lockTimeout: 10 * time.Second,
	}
}

// PlaceBid validates and classifies a wager, then debits the wallet and
// stores the bid with its ledger row in one transaction. Nothing is written
// when any check fails.
func (s *BidService) PlaceBid(ctx context.Context, req PlaceBidRequest) (*model.Bid, error) {
	if req.Amount <= 0 || req.Amount < s.limits.MinAmount ||
		(s.limits.MaxAmount > 0 && req.Amount > s.limits.MaxAmount) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, req.Amount)
	}
	if req.Session != model.SessionOpen && req.Session != model.SessionClose {
		return nil, fmt.Errorf("%w: unknown session %q", matka.ErrClassification, req.Session)
	}

	g, err := s.store.Games().GetByID(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	category, ok := s.registry.Get(g.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, g.Category)
	}
	if !category.Offers(req.GameType) {
		return nil, fmt.Errorf("%w: %s in %s", ErrGameTypeNotOffered, req.GameType, g.Category)
	}

	n, err := matka.Parse(req.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", matka.ErrClassification, err)
	}
	if err := matka.CheckShape(req.GameType, n); err != nil {
		return nil, err
	}
	rateType, err := matka.Classify(req.GameType, req.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", matka.ErrClassification, err)
	}

	rows, err := s.store.Rates().ListByGame(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	if _, err := matka.NewRateTable(rows).Lookup(rateType); err != nil {
		return nil, err
	}

	day := s.clock.Today()
	bid := &model.Bid{
		UserID:            req.UserID,
		GameID:            g.ID,
		GameCategory:      g.Category,
		GameSession:       req.Session,
		GameType:          req.GameType,
		GameRateType:      rateType,
		GameNumber:        n.String(),
		GameAmount:        req.Amount,
		ResultStatus:      model.StatusPending,
		ResultDeclareDate: day,
		UpdatedBy:         model.UpdatedByPending,
	}

	var created *model.Bid
	err = s.userLock.WithLockContext(ctx, req.UserID, s.lockTimeout, func() error {
		return s.store.WithTx(ctx, func(tx Store) error {
			if err := s.checkOpen(ctx, tx, g.ID, day, n, req.Session); err != nil {
				return err
			}
			change, err := tx.Users().Debit(ctx, req.UserID, req.Amount)
			if err != nil {
				return err
			}
			created, err = tx.Bids().Create(ctx, bid)
			if err != nil {
				return err
			}
			desc := fmt.Sprintf("%s %s %s on %s", req.GameType, req.Session, created.GameNumber, g.Name)
			_, err = tx.Transactions().Create(ctx, &model.Transaction{
				UserID:         req.UserID,
				BidID:          &created.ID,
				Type:           model.TxTypeBid,
				Direction:      model.DirectionDebit,
				Amount:         req.Amount,
				PreviousAmount: change.Previous,
				CurrentAmount:  change.Current,
				Description:    &desc,
			})
			return err
		})
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrUserNotFound) ||
			errors.Is(err, ErrBettingClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to place bid: %w", err)
	}

	metrics.RecordBidPlaced(string(rateType))
	log.Info().
		Int64("bid_id", created.ID).
		Int64("user_id", created.UserID).
		Int64("game_id", created.GameID).
		Str("game_type", string(created.GameType)).
		Str("number", created.GameNumber).
		Int64("amount", created.GameAmount).
		Msg("Bid placed")
	return created, nil
}

// checkOpen rejects bids that a declaration already made for the day would
// have to decide. It holds the game-day lock for the rest of tx, so a
// declaration either sees the bid when it settles or the bid sees the
// declaration here.
func (s *BidService) checkOpen(
	ctx context.Context,
	tx Store,
	gameID int64,
	day time.Time,
	n matka.Number,
	session model.GameSession,
) error {
	if err := tx.Results().LockGameDay(ctx, gameID, day); err != nil {
		return fmt.Errorf("failed to lock game day: %w", err)
	}
	res, err := tx.Results().Get(ctx, gameID, day)
	if errors.Is(err, ErrResultNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load result: %w", err)
	}

	switch declarationOf(res).State() {
	case matka.StateCloseDeclared:
		return ErrBettingClosed
	case matka.StateOpenDeclared:
		if s.rules.DecidedAtOpen(n, session) {
			return ErrBettingClosed
		}
	}
	return nil
}

// ListUserBids returns a player's most recent bids.
func (s *BidService) ListUserBids(ctx context.Context, userID int64, limit int) ([]model.Bid, error) {
	return s.store.Bids().List(ctx, model.BidFilter{UserID: &userID, Limit: limit})
}
