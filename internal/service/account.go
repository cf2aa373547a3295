package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"matka-bot/internal/model"
	"matka-bot/internal/pkg/lock"
)

// AccountService handles player accounts and admin wallet top-ups.
type AccountService struct {
	store    Store
	userLock *lock.UserLock
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(store Store, userLock *lock.UserLock) *AccountService {
	return &AccountService{store: store, userLock: userLock}
}

// EnsureUser returns the user, creating an empty wallet on first contact.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.store.Users().GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}
	return user, created, nil
}

// GetBalance returns a user's wallet balance.
func (s *AccountService) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	user, err := s.store.Users().GetByID(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return user.Balance, nil
}

// AdminCredit adds amount to a wallet and records it in the ledger.
func (s *AccountService) AdminCredit(ctx context.Context, telegramID int64, amount int64, adminID int64) (model.BalanceChange, error) {
	if amount <= 0 {
		return model.BalanceChange{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	var change model.BalanceChange
	err := s.userLock.WithLock(telegramID, func() error {
		return s.store.WithTx(ctx, func(tx Store) error {
			var err error
			change, err = tx.Users().Adjust(ctx, telegramID, amount)
			if err != nil {
				return err
			}
			desc := fmt.Sprintf("Credited by admin %d", adminID)
			_, err = tx.Transactions().Create(ctx, &model.Transaction{
				UserID:         telegramID,
				Type:           model.TxTypeAdminAdd,
				Direction:      model.DirectionCredit,
				Amount:         amount,
				PreviousAmount: change.Previous,
				CurrentAmount:  change.Current,
				Description:    &desc,
			})
			return err
		})
	})
	if err != nil {
		return model.BalanceChange{}, fmt.Errorf("failed to credit wallet: %w", err)
	}

	log.Info().
		Int64("user_id", telegramID).
		Int64("admin_id", adminID).
		Int64("amount", amount).
		Int64("balance", change.Current).
		Msg("Wallet credited by admin")
	return change, nil
}

// History returns a user's most recent ledger entries.
func (s *AccountService) History(ctx context.Context, telegramID int64, limit int) ([]model.Transaction, error) {
	return s.store.Transactions().ListByUser(ctx, telegramID, limit)
}
