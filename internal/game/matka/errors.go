package matka

import "errors"

// Errors returned by the matka engine.
var (
	// ErrClassification is returned when a game type is unknown or the number
	// shape does not belong to the game type. The bid must be rejected.
	ErrClassification = errors.New("cannot classify bid")

	// ErrMalformedNumber is returned when a game number fails shape parsing.
	ErrMalformedNumber = errors.New("malformed game number")

	// ErrRateLookup is returned when a game has no rate row for a rate class.
	ErrRateLookup = errors.New("rate not configured")

	// ErrAlreadyDeclared is returned for a duplicate open or close declaration.
	ErrAlreadyDeclared = errors.New("result already declared")

	// ErrOrdering is returned when declarations or deletions run out of order.
	ErrOrdering = errors.New("result declaration out of order")

	// ErrNotDeclared is returned when deleting a result that was never declared.
	ErrNotDeclared = errors.New("result not declared")

	// ErrInvalidResult is returned when a declared result is not 1 to 3 digits.
	ErrInvalidResult = errors.New("result must be 1 to 3 digits")
)
