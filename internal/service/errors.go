// Package service implements bid placement, result declaration, settlement,
// reporting and account operations on top of a transactional Store.
package service

import "errors"

// Errors returned by services and the repositories behind them.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrGameExists          = errors.New("game already exists")
	ErrResultNotFound      = errors.New("result not found")
	ErrRateNotFound        = errors.New("rate not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyReversed     = errors.New("transaction already reversed")

	ErrUnknownCategory    = errors.New("unknown game category")
	ErrGameTypeNotOffered = errors.New("game type not offered in this category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrBettingClosed      = errors.New("betting closed for this session")

	// ErrSettlementIncomplete means a declaration was stored but its
	// settlement pass failed. Resettle finishes the work.
	ErrSettlementIncomplete = errors.New("result stored but settlement failed")
)
