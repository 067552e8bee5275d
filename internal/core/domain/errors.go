package domain

import "errors"

// Sentinel errors returned by services and repositories. The HTTP layer maps
// them to status codes; see internal/api/error_handler.go.

// Lookup failures (404).
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// State-machine and uniqueness conflicts (409).
var (
	ErrJobNotOpen          = errors.New("job is not open")
	ErrJobNotInProgress    = errors.New("job is not in progress")
	ErrJobClosed           = errors.New("job is already completed or cancelled")
	ErrJobNotCompleted     = errors.New("job is not completed")
	ErrNoAcceptedProposal  = errors.New("job has no accepted proposal")
	ErrJobExpired          = errors.New("job has expired")
	ErrProposalNotPending  = errors.New("proposal is not pending")
	ErrProposalExists      = errors.New("an active proposal for this job already exists")
	ErrAmountMismatch      = errors.New("amount does not match the accepted proposal offer")
	ErrPaymentNotPaid      = errors.New("payment is not in paid status")
	ErrActivePaymentExists = errors.New("an active payment already exists for this job")
	ErrDisputeExists       = errors.New("an open dispute already exists for this payment")
	ErrDisputeClosed       = errors.New("dispute is already closed")
	ErrDuplicateRating     = errors.New("rating for this job already submitted")
	ErrUserExists          = errors.New("user already exists")

	// ErrConflict is returned by conditional repository writes that matched no
	// document, meaning a concurrent update won the race. Services re-read the
	// entity to produce one of the specific conflict errors above.
	ErrConflict = errors.New("concurrent update conflict")
)

// Authorization failures (403) and credential failures (401).
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrValidation is the category for malformed or missing input (400). Wrap it
// to carry a field-level message: fmt.Errorf("%w: reason is required", ErrValidation).
var ErrValidation = errors.New("invalid input")
