package domain

import "errors"

var (
	// ErrInvalidHashFormat is returned for a malformed transaction hash.
	// No network call is made for these.
	ErrInvalidHashFormat = errors.New("invalid transaction hash format")

	// ErrTransactionNotYetVisible is returned when the node still cannot see
	// the transaction after the observer's retry budget is exhausted.
	// The transaction may simply not be indexed yet; callers should suggest
	// waiting and retrying.
	ErrTransactionNotYetVisible = errors.New("transaction not yet visible on chain")

	// ErrTransactionFailed is returned when the receipt status is a failure
	ErrTransactionFailed = errors.New("transaction failed on chain")

	// ErrWrongRecipient is returned when the payment went to an address other
	// than the configured recipient
	ErrWrongRecipient = errors.New("payment sent to wrong recipient")

	// ErrInsufficientAmount is returned when the transferred value is below
	// the configured minimum
	ErrInsufficientAmount = errors.New("insufficient payment amount")

	// ErrSenderMismatch is returned when the transaction sender does not match
	// the identity claimed by the requester
	ErrSenderMismatch = errors.New("sender address does not match transaction sender")

	// ErrPaymentTooSmall is returned when the payment buys a duration below
	// the minimum ownership duration
	ErrPaymentTooSmall = errors.New("payment amount too small")

	// ErrDuplicateTransaction is returned when a transaction hash has already
	// been consumed by a prior successful submission
	ErrDuplicateTransaction = errors.New("transaction already used")

	// ErrForbidden is returned when a mutation is attempted by an address
	// other than the current owner
	ErrForbidden = errors.New("forbidden")

	// ErrOwnershipExpired is returned when a mutation is attempted after the
	// ownership's expiry time has passed
	ErrOwnershipExpired = errors.New("ownership has expired")

	// ErrNotFound is returned when no matching record exists
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed request input
	ErrValidation = errors.New("validation failed")
)
