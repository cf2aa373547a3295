package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/pkg/events"
	"matka-bot/internal/pkg/lock"
	"matka-bot/internal/pkg/metrics"
)

// Summary counts what one settlement pass did.
type Summary struct {
	RunID    string
	Stage    matka.Stage
	Total    int
	Won      int
	Lost     int
	Pending  int
	Failed   int
	Skipped  int // already settled by an earlier pass
	Payout   int64
	Duration time.Duration
}

// SettlementService settles the bids of a game-day against a draw.
type SettlementService struct {
	store     Store
	userLock  *lock.UserLock
	rules     matka.Rules
	workers   int
	notifier  Notifier
	publisher events.Publisher
}

// NewSettlementService creates a new SettlementService instance.
func NewSettlementService(
	store Store,
	userLock *lock.UserLock,
	rules matka.Rules,
	workers int,
	notifier Notifier,
	publisher events.Publisher,
) *SettlementService {
	if workers < 1 {
		workers = 1
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &SettlementService{
		store:     store,
		userLock:  userLock,
		rules:     rules,
		workers:   workers,
		notifier:  notifier,
		publisher: publisher,
	}
}

// touchedBy lists the updated_by markers a stage may settle from.
func touchedBy(stage matka.Stage) []model.UpdatedBy {
	if stage == matka.StageClose {
		return []model.UpdatedBy{model.UpdatedByPending, model.UpdatedByOpen}
	}
	return []model.UpdatedBy{model.UpdatedByPending}
}

// Settle runs one settlement pass. Outcomes are computed first without side
// effects, then applied per user under the user's lock with one database
// transaction per bid. A bid that fails is logged and left PENDING; it never
// stops the rest of the batch. Notifications and events go out afterwards.
func (s *SettlementService) Settle(ctx context.Context, g *model.Game, day time.Time, draw matka.Draw) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.New().String(), Stage: draw.Stage}
	stage := string(draw.Stage)
	logger := log.With().
		Str("run_id", sum.RunID).
		Int64("game_id", g.ID).
		Str("day", day.Format(DayLayout)).
		Str("stage", stage).
		Logger()

	rows, err := s.store.Rates().ListByGame(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	rates := matka.NewRateTable(rows)

	bids, err := s.store.Bids().ListUnsettled(ctx, g.ID, day, touchedBy(draw.Stage))
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	sum.Total = len(bids)

	// compute
	byUser := make(map[int64][]matka.Outcome)
	var pendingIDs []int64
	for _, b := range bids {
		out := s.rules.Settle(b, rates, draw)
		switch {
		case out.Err != nil:
			sum.Failed++
			metrics.RecordSettledBid(stage, "FAILED")
			logger.Error().Err(out.Err).
				Int64("bid_id", b.ID).
				Str("number", b.GameNumber).
				Str("game_type", string(b.GameType)).
				Msg("Bid left pending for manual review")
		case out.Status == model.StatusPending:
			sum.Pending++
			pendingIDs = append(pendingIDs, b.ID)
			metrics.RecordSettledBid(stage, string(model.StatusPending))
		default:
			byUser[b.UserID] = append(byUser[b.UserID], out)
		}
	}

	if draw.Stage == matka.StageOpen && len(pendingIDs) > 0 {
		if _, err := s.store.Bids().MarkTouched(ctx, pendingIDs, draw.Stage.UpdatedBy()); err != nil {
			return nil, fmt.Errorf("failed to mark pending bids: %w", err)
		}
	}

	// apply
	var (
		mu      sync.Mutex
		applied []matka.Outcome
	)
	g2, gctx := errgroup.WithContext(ctx)
	g2.SetLimit(s.workers)
	for userID, outs := range byUser {
		g2.Go(func() error {
			s.userLock.Lock(userID)
			defer s.userLock.Unlock(userID)

			for _, out := range outs {
				ok, err := s.apply(gctx, out, draw)
				mu.Lock()
				switch {
				case err != nil:
					sum.Failed++
					metrics.RecordSettledBid(stage, "FAILED")
					logger.Error().Err(err).Int64("bid_id", out.Bid.ID).Msg("Failed to apply bid outcome")
				case !ok:
					sum.Skipped++
				default:
					applied = append(applied, out)
					metrics.RecordSettledBid(stage, string(out.Status))
					if out.Status == model.StatusWin {
						sum.Won++
						sum.Payout += out.WinAmount
					} else {
						sum.Lost++
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	// notify
	for _, out := range applied {
		s.announce(ctx, g, out, draw)
	}

	sum.Duration = time.Since(start)
	metrics.ObserveSettlement(stage, sum.Duration)
	logger.Info().
		Int("total", sum.Total).
		Int("won", sum.Won).
		Int("lost", sum.Lost).
		Int("pending", sum.Pending).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Int64("payout", sum.Payout).
		Dur("duration", sum.Duration).
		Msg("Settlement pass finished")
	return sum, nil
}

// apply writes one outcome. It reports false when the bid had already been
// settled, in which case nothing is written.
func (s *SettlementService) apply(ctx context.Context, out matka.Outcome, draw matka.Draw) (bool, error) {
	b := out.Bid
	stage := string(draw.Stage)
	applied := false

	err := s.store.WithTx(ctx, func(tx Store) error {
		ok, err := tx.Bids().ApplyOutcome(ctx, b.ID, out.Status, out.WinAmount,
			draw.Stage.UpdatedBy(), touchedBy(draw.Stage))
		if err != nil || !ok {
			return err
		}
		applied = true
		if out.Status != model.StatusWin {
			return nil
		}

		change, err := tx.Users().Adjust(ctx, b.UserID, out.WinAmount)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("Win on bid #%d (%s %s)", b.ID, b.GameType, b.GameNumber)
		_, err = tx.Transactions().Create(ctx, &model.Transaction{
			UserID:         b.UserID,
			BidID:          &b.ID,
			Type:           model.TxTypeWin,
			Direction:      model.DirectionCredit,
			Amount:         out.WinAmount,
			PreviousAmount: change.Previous,
			CurrentAmount:  change.Current,
			Stage:          &stage,
			Description:    &desc,
		})
		return err
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *SettlementService) announce(ctx context.Context, g *model.Game, out matka.Outcome, draw matka.Draw) {
	b := out.Bid
	if out.Status == model.StatusWin {
		s.notifier.Notify(
			strconv.FormatInt(b.UserID, 10),
			fmt.Sprintf("%s %s result", g.Name, draw.Stage),
			fmt.Sprintf("Your bid %s on %s won %d.", b.GameNumber, b.GameType, out.WinAmount),
		)
	}

	err := s.publisher.Publish(ctx, events.BidSettled{
		BidID:     b.ID,
		UserID:    b.UserID,
		GameID:    b.GameID,
		Stage:     string(draw.Stage),
		Status:    string(out.Status),
		WinAmount: out.WinAmount,
	})
	if err != nil {
		log.Warn().Err(err).Int64("bid_id", b.ID).Msg("Failed to publish settlement event")
	}
}
