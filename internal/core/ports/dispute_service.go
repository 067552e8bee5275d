package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// OpenDisputeInput carries a party's claim against a paid escrow payment.
type OpenDisputeInput struct {
	PaymentID string
	CreatorID string
	Category  string
	Reason    string
	Evidence  []string
}

// ResolveDisputeInput carries an administrative resolution. Favor decides
// whether the linked payment is released or refunded.
type ResolveDisputeInput struct {
	DisputeID  string
	AdminID    string
	Resolution string
	Favor      string
}

// DisputeListResult is a page of disputes.
type DisputeListResult struct {
	Items      []*domain.Dispute
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DisputeService defines the dispute resolution use cases.
type DisputeService interface {
	Open(ctx context.Context, input OpenDisputeInput) (*domain.Dispute, error)
	Review(ctx context.Context, disputeID string) error
	Resolve(ctx context.Context, input ResolveDisputeInput) (*domain.Dispute, error)
	List(ctx context.Context, filter ListDisputesFilter) (*DisputeListResult, error)
}
