package ports

import (
	"context"
	"time"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// ListDisputesFilter carries the admin queue query parameters.
type ListDisputesFilter struct {
	Status string // optional: filter by dispute status
	Page   int
	Limit  int
}

// DisputeRepository defines persistence operations for disputes.
type DisputeRepository interface {
	// Create inserts the dispute. A unique guard on payment_id over open
	// statuses returns domain.ErrDisputeExists when an open dispute already
	// exists for the payment.
	Create(ctx context.Context, d *domain.Dispute) error
	FindByID(ctx context.Context, id string) (*domain.Dispute, error)
	List(ctx context.Context, filter ListDisputesFilter) ([]*domain.Dispute, int64, error)
	// MarkInReview transitions open → in_review conditionally.
	MarkInReview(ctx context.Context, id string) error
	// Resolve transitions open/in_review to the resolved status in a single
	// conditional write, recording the resolution text and admin.
	Resolve(ctx context.Context, id string, status domain.DisputeStatus, resolution, adminID string, at time.Time) error
}
