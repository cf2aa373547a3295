package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/pkg/events"
	"matka-bot/internal/pkg/lock"
	"matka-bot/internal/pkg/metrics"
)

// Declared is the outcome of a declaration.
type Declared struct {
	Result  *model.GameResult
	State   matka.State
	Summary *Summary
}

// Deleted is the outcome of a result deletion.
type Deleted struct {
	State         matka.State
	ResetBids     int64
	Reversed      int
	ReversedTotal int64
}

// ResultService declares and deletes game results. Every operation on a
// game-day runs under that game-day's lock, settlement included.
type ResultService struct {
	store       Store
	settlement  *SettlementService
	userLock    *lock.UserLock
	dayLock     *lock.GameDayLock
	lockTimeout time.Duration
	publisher   events.Publisher
	now         func() time.Time
}

// NewResultService creates a new ResultService instance.
func NewResultService(
	store Store,
	settlement *SettlementService,
	userLock *lock.UserLock,
	dayLock *lock.GameDayLock,
	lockTimeout time.Duration,
	publisher events.Publisher,
) *ResultService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if lockTimeout <= 0 {
		lockTimeout = 30 * time.Second
	}
	return &ResultService{
		store:       store,
		settlement:  settlement,
		userLock:    userLock,
		dayLock:     dayLock,
		lockTimeout: lockTimeout,
		publisher:   publisher,
		now:         time.Now,
	}
}

// declarationOf converts a stored result row. A nil row is NO_RESULT.
func declarationOf(res *model.GameResult) matka.Declaration {
	var d matka.Declaration
	if res == nil {
		return d
	}
	if res.OpenResultNumber != nil {
		d.Open = *res.OpenResultNumber
	}
	if res.CloseResultNumber != nil {
		d.Close = *res.CloseResultNumber
	}
	if res.GameResultNumber != nil {
		d.Result = *res.GameResultNumber
	}
	return d
}

func resultRow(g *model.Game, day time.Time, d matka.Declaration) *model.GameResult {
	row := &model.GameResult{
		GameID:            g.ID,
		GameCategory:      g.Category,
		ResultDeclareDate: day,
	}
	if d.Open != "" {
		row.OpenResultNumber = &d.Open
	}
	if d.Close != "" {
		row.CloseResultNumber = &d.Close
	}
	if d.Result != "" {
		row.GameResultNumber = &d.Result
	}
	return row
}

func (s *ResultService) withDay(ctx context.Context, gameID int64, day time.Time, fn func() error) error {
	key := lock.GameDay{GameID: gameID, Day: day.Format(DayLayout)}
	return s.dayLock.WithLockContext(ctx, key, s.lockTimeout, fn)
}

// load reads the current declaration of a game-day inside tx after taking
// the game-day lock in the database.
func load(ctx context.Context, tx Store, gameID int64, day time.Time) (matka.Declaration, error) {
	if err := tx.Results().LockGameDay(ctx, gameID, day); err != nil {
		return matka.Declaration{}, fmt.Errorf("failed to lock game day: %w", err)
	}
	res, err := tx.Results().Get(ctx, gameID, day)
	if errors.Is(err, ErrResultNotFound) {
		return matka.Declaration{}, nil
	}
	if err != nil {
		return matka.Declaration{}, err
	}
	return declarationOf(res), nil
}

// DeclareOpen stores the open panel of a game-day and settles its bids.
func (s *ResultService) DeclareOpen(ctx context.Context, gameID int64, day time.Time, open string) (*Declared, error) {
	return s.declare(ctx, gameID, day, matka.StageOpen, func(d matka.Declaration) (matka.Declaration, error) {
		return matka.DeclareOpen(d, open)
	})
}

// DeclareClose stores the close panel of a game-day and settles its bids.
func (s *ResultService) DeclareClose(ctx context.Context, gameID int64, day time.Time, close string) (*Declared, error) {
	return s.declare(ctx, gameID, day, matka.StageClose, func(d matka.Declaration) (matka.Declaration, error) {
		return matka.DeclareClose(d, close)
	})
}

func (s *ResultService) declare(
	ctx context.Context,
	gameID int64,
	day time.Time,
	stage matka.Stage,
	step func(matka.Declaration) (matka.Declaration, error),
) (*Declared, error) {
	var out Declared
	err := s.withDay(ctx, gameID, day, func() error {
		g, err := s.store.Games().GetByID(ctx, gameID)
		if err != nil {
			return err
		}

		var next matka.Declaration
		err = s.store.WithTx(ctx, func(tx Store) error {
			cur, err := load(ctx, tx, gameID, day)
			if err != nil {
				return err
			}
			next, err = step(cur)
			if err != nil {
				return err
			}
			out.Result, err = tx.Results().Upsert(ctx, resultRow(g, day, next))
			if err != nil {
				return err
			}
			return tx.Games().RefreshResultCache(ctx, gameID)
		})
		if err != nil {
			return err
		}
		out.State = next.State()
		metrics.RecordDeclaration(string(stage), "declare")

		draw := matka.OpenDraw(next.Open)
		if stage == matka.StageClose {
			draw = matka.CloseDraw(next.Open, next.Close)
		}
		out.Summary, err = s.settlement.Settle(ctx, g, day, draw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSettlementIncomplete, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := declarationOf(out.Result)
	log.Info().
		Int64("game_id", gameID).
		Str("day", day.Format(DayLayout)).
		Str("stage", string(stage)).
		Str("open", d.Open).
		Str("close", d.Close).
		Str("result", d.Result).
		Msg("Result declared")

	s.publish(ctx, events.ResultDeclared{
		GameID:     gameID,
		Day:        day.Format(DayLayout),
		Stage:      string(stage),
		Open:       d.Open,
		Close:      d.Close,
		Result:     d.Result,
		Won:        out.Summary.Won,
		Lost:       out.Summary.Lost,
		Pending:    out.Summary.Pending,
		Failed:     out.Summary.Failed,
		Payout:     out.Summary.Payout,
		DeclaredAt: s.now(),
	})
	return &out, nil
}

// Resettle reruns settlement for the latest declaration of a game-day.
// Bids that were already settled are left alone, so it is safe to repeat
// after a settlement pass failed part way.
func (s *ResultService) Resettle(ctx context.Context, gameID int64, day time.Time) (*Summary, error) {
	var sum *Summary
	err := s.withDay(ctx, gameID, day, func() error {
		g, err := s.store.Games().GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		res, err := s.store.Results().Get(ctx, gameID, day)
		if err != nil {
			return err
		}
		d := declarationOf(res)

		var draw matka.Draw
		switch d.State() {
		case matka.StateCloseDeclared:
			draw = matka.CloseDraw(d.Open, d.Close)
		case matka.StateOpenDeclared:
			draw = matka.OpenDraw(d.Open)
		default:
			return ErrResultNotFound
		}
		sum, err = s.settlement.Settle(ctx, g, day, draw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// DeleteClose steps a game-day back to OPEN_DECLARED. Close payouts are
// reversed, bids settled at close return to PENDING, then the close panel is
// removed. Each step can be repeated, so a failed deletion is retried by
// calling DeleteClose again.
func (s *ResultService) DeleteClose(ctx context.Context, gameID int64, day time.Time) (*Deleted, error) {
	return s.remove(ctx, gameID, day, matka.StageClose, matka.DeleteClose)
}

// DeleteOpen steps a game-day back to NO_RESULT. It fails with
// matka.ErrOrdering while the close result exists.
func (s *ResultService) DeleteOpen(ctx context.Context, gameID int64, day time.Time) (*Deleted, error) {
	return s.remove(ctx, gameID, day, matka.StageOpen, matka.DeleteOpen)
}

func (s *ResultService) remove(
	ctx context.Context,
	gameID int64,
	day time.Time,
	stage matka.Stage,
	step func(matka.Declaration) (matka.Declaration, error),
) (*Deleted, error) {
	out := &Deleted{}
	err := s.withDay(ctx, gameID, day, func() error {
		g, err := s.store.Games().GetByID(ctx, gameID)
		if err != nil {
			return err
		}

		// validate before touching any money
		res, err := s.store.Results().Get(ctx, gameID, day)
		if err != nil && !errors.Is(err, ErrResultNotFound) {
			return err
		}
		if _, err := step(declarationOf(res)); err != nil {
			return err
		}

		out.Reversed, out.ReversedTotal, err = s.reverseWins(ctx, gameID, day, stage)
		if err != nil {
			return err
		}

		to := model.UpdatedByPending
		if stage == matka.StageClose {
			to = model.UpdatedByOpen
		}
		return s.store.WithTx(ctx, func(tx Store) error {
			cur, err := load(ctx, tx, gameID, day)
			if err != nil {
				return err
			}
			next, err := step(cur)
			if err != nil {
				return err
			}
			out.ResetBids, err = tx.Bids().Reset(ctx, gameID, day, stage.UpdatedBy(), to)
			if err != nil {
				return err
			}
			if next.State() == matka.StateNoResult {
				err = tx.Results().Delete(ctx, gameID, day)
			} else {
				_, err = tx.Results().Upsert(ctx, resultRow(g, day, next))
			}
			if err != nil {
				return err
			}
			out.State = next.State()
			return tx.Games().RefreshResultCache(ctx, gameID)
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDeclaration(string(stage), "delete")
	log.Info().
		Int64("game_id", gameID).
		Str("day", day.Format(DayLayout)).
		Str("stage", string(stage)).
		Int64("reset_bids", out.ResetBids).
		Int("reversed", out.Reversed).
		Int64("reversed_total", out.ReversedTotal).
		Msg("Result deleted")

	s.publish(ctx, events.ResultDeleted{
		GameID:        gameID,
		Day:           day.Format(DayLayout),
		Stage:         string(stage),
		ResetBids:     out.ResetBids,
		ReversedTotal: out.ReversedTotal,
	})
	return out, nil
}

// reverseWins writes an offsetting debit for every unreversed win credit of
// a stage. A credit that was reversed concurrently or by an earlier attempt
// is skipped.
func (s *ResultService) reverseWins(ctx context.Context, gameID int64, day time.Time, stage matka.Stage) (int, int64, error) {
	wins, err := s.store.Transactions().ListUnreversedWins(ctx, gameID, day, string(stage))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list wins: %w", err)
	}

	var (
		count int
		total int64
	)
	for _, w := range wins {
		err := s.userLock.WithLockContext(ctx, w.UserID, s.lockTimeout, func() error {
			return s.store.WithTx(ctx, func(tx Store) error {
				change, err := tx.Users().Adjust(ctx, w.UserID, -w.Amount)
				if err != nil {
					return err
				}
				desc := fmt.Sprintf("Reversal of transaction #%d", w.ID)
				_, err = tx.Transactions().CreateReversal(ctx, &model.Transaction{
					UserID:         w.UserID,
					BidID:          w.BidID,
					Type:           model.TxTypeWinReversal,
					Direction:      model.DirectionDebit,
					Amount:         w.Amount,
					PreviousAmount: change.Previous,
					CurrentAmount:  change.Current,
					Stage:          w.Stage,
					ReversalOf:     &w.ID,
					Description:    &desc,
				})
				return err
			})
		})
		if errors.Is(err, ErrAlreadyReversed) {
			log.Warn().Int64("transaction_id", w.ID).Msg("Win already reversed, skipping")
			continue
		}
		if err != nil {
			return count, total, fmt.Errorf("failed to reverse transaction %d: %w", w.ID, err)
		}
		count++
		total += w.Amount
	}
	return count, total, nil
}

// Get returns the result row and state of a game-day. A game-day without a
// row is NO_RESULT with a nil row.
func (s *ResultService) Get(ctx context.Context, gameID int64, day time.Time) (*model.GameResult, matka.State, error) {
	res, err := s.store.Results().Get(ctx, gameID, day)
	if errors.Is(err, ErrResultNotFound) {
		return nil, matka.StateNoResult, nil
	}
	if err != nil {
		return nil, "", err
	}
	return res, declarationOf(res).State(), nil
}

func (s *ResultService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", e.Type()).Msg("Failed to publish event")
	}
}
