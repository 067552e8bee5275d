package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// FundEscrowInput carries a client's request to fund escrow for a completed
// or in-progress job with an accepted proposal.
type FundEscrowInput struct {
	JobID    string
	ClientID string
	Gross    float64
	Method   string
}

// ReleaseEscrowInput identifies the payment the owning client releases.
type ReleaseEscrowInput struct {
	PaymentID string
	ClientID  string
}

// RefundEscrowInput carries a refund by either party; reason is mandatory.
type RefundEscrowInput struct {
	PaymentID string
	ActorID   string
	Reason    string
}

// ListPaymentsInput carries the party-scoped listing parameters.
type ListPaymentsInput struct {
	UserID string
	Page   int
	Limit  int
}

// PaymentListResult is a page of payments.
type PaymentListResult struct {
	Items      []*domain.EscrowPayment
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// PaymentService defines the escrow use cases.
type PaymentService interface {
	Fund(ctx context.Context, input FundEscrowInput) (*domain.EscrowPayment, error)
	Release(ctx context.Context, input ReleaseEscrowInput) (*domain.EscrowPayment, error)
	Refund(ctx context.Context, input RefundEscrowInput) (*domain.EscrowPayment, error)
	List(ctx context.Context, input ListPaymentsInput) (*PaymentListResult, error)
	Earnings(ctx context.Context, professionalID string) (*domain.Earnings, error)
}
