package ports

import (
	"context"
	"time"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// PaymentRepository defines persistence operations for escrow payments.
type PaymentRepository interface {
	// Create inserts the payment. A unique guard on job_id over active
	// statuses makes this an atomic insert-if-absent:
	// domain.ErrActivePaymentExists is returned when another active payment
	// already holds the job.
	Create(ctx context.Context, p *domain.EscrowPayment) error
	FindByID(ctx context.Context, id string) (*domain.EscrowPayment, error)
	// FindActiveByJob returns the active (non-cancelled, non-refunded)
	// payment for a job, or domain.ErrPaymentNotFound.
	FindActiveByJob(ctx context.Context, jobID string) (*domain.EscrowPayment, error)
	// UpdateStatus transitions from → to in a single conditional write,
	// recording reason and the settlement time. domain.ErrConflict when the
	// payment is no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to domain.PaymentStatus, reason string, at time.Time) error
	// ListByParty returns a page of payments where the user is client or
	// professional, newest first.
	ListByParty(ctx context.Context, userID string, page, limit int) ([]*domain.EscrowPayment, int64, error)
	// Earnings aggregates released and held totals for a professional on
	// demand; no running total is persisted.
	Earnings(ctx context.Context, professionalID string) (*domain.Earnings, error)
}
