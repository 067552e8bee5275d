package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// EscrowSettler abstracts the administrative settlement of a payment,
// bypassing the party-identity checks of the normal release/refund paths.
type EscrowSettler interface {
	AdminRelease(ctx context.Context, paymentID, note string) (*domain.EscrowPayment, error)
	AdminRefund(ctx context.Context, paymentID, note string) (*domain.EscrowPayment, error)
}

// DisputeService owns escalations against paid escrow payments and their
// administrative resolution.
type DisputeService struct {
	disputes ports.DisputeRepository
	payments ports.PaymentRepository
	settler  EscrowSettler
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewDisputeService(disputes ports.DisputeRepository, payments ports.PaymentRepository, settler EscrowSettler, notifier ports.Notifier, logger zerolog.Logger) *DisputeService {
	return &DisputeService{disputes: disputes, payments: payments, settler: settler, notifier: notifier, logger: logger}
}

// Open files a dispute against a paid payment by one of its parties. The
// repository's uniqueness guard rejects a second open dispute per payment.
func (s *DisputeService) Open(ctx context.Context, input ports.OpenDisputeInput) (*domain.Dispute, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if len(input.Evidence) > domain.MaxEvidence {
		return nil, fmt.Errorf("%w: at most %d evidence references allowed", domain.ErrValidation, domain.MaxEvidence)
	}

	payment, err := s.payments.FindByID(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.ClientID != input.CreatorID && payment.ProfessionalID != input.CreatorID {
		return nil, domain.ErrForbidden
	}
	if payment.Status != domain.PaymentPaid {
		return nil, domain.ErrPaymentNotPaid
	}

	dispute := &domain.Dispute{
		ID:        uuid.NewString(),
		PaymentID: payment.ID,
		JobID:     payment.JobID,
		CreatorID: input.CreatorID,
		Category:  input.Category,
		Reason:    input.Reason,
		Evidence:  input.Evidence,
		Status:    domain.DisputeOpen,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, err
	}

	// Tell the other party.
	other := payment.ProfessionalID
	if input.CreatorID == other {
		other = payment.ClientID
	}
	s.notifier.Notify(ctx, other, domain.NotifyDisputeOpened, map[string]any{
		"dispute_id": dispute.ID,
		"payment_id": payment.ID,
		"category":   dispute.Category,
	})

	s.logger.Info().
		Str("dispute_id", dispute.ID).
		Str("payment_id", payment.ID).
		Str("creator_id", input.CreatorID).
		Msg("dispute opened")

	return dispute, nil
}

// Review moves an open dispute into in_review while an admin investigates.
func (s *DisputeService) Review(ctx context.Context, disputeID string) error {
	if err := s.disputes.MarkInReview(ctx, disputeID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrDisputeClosed
		}
		return err
	}
	return nil
}

// Resolve closes the dispute in one party's favor and settles the linked
// payment accordingly: professional → release, client → refund. The
// settlement runs on administrative authority, superseding party consent.
func (s *DisputeService) Resolve(ctx context.Context, input ports.ResolveDisputeInput) (*domain.Dispute, error) {
	favor := domain.DisputeFavor(input.Favor)
	if favor != domain.FavorClient && favor != domain.FavorProfessional {
		return nil, fmt.Errorf("%w: favor must be client or professional", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Resolution) == "" {
		return nil, fmt.Errorf("%w: resolution text is required", domain.ErrValidation)
	}

	dispute, err := s.disputes.FindByID(ctx, input.DisputeID)
	if err != nil {
		return nil, err
	}
	if !dispute.Status.Open() {
		return nil, domain.ErrDisputeClosed
	}

	status := domain.DisputeResolvedProfessional
	if favor == domain.FavorClient {
		status = domain.DisputeResolvedClient
	}

	now := time.Now().UTC()
	if err := s.disputes.Resolve(ctx, dispute.ID, status, input.Resolution, input.AdminID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrDisputeClosed
		}
		return nil, err
	}
	dispute.Status = status
	dispute.Resolution = input.Resolution
	dispute.ResolvedBy = input.AdminID
	dispute.ResolvedAt = &now

	note := "dispute " + dispute.ID + " resolved"
	var payment *domain.EscrowPayment
	var settleErr error
	if favor == domain.FavorProfessional {
		payment, settleErr = s.settler.AdminRelease(ctx, dispute.PaymentID, note)
	} else {
		payment, settleErr = s.settler.AdminRefund(ctx, dispute.PaymentID, note)
	}
	if settleErr != nil {
		// The dispute record is already resolved; a settlement failure here
		// means the payment was settled out from under the dispute.
		s.logger.Error().Err(settleErr).
			Str("dispute_id", dispute.ID).
			Str("payment_id", dispute.PaymentID).
			Msg("dispute resolved but payment settlement failed")
	}

	payload := map[string]any{
		"dispute_id": dispute.ID,
		"payment_id": dispute.PaymentID,
		"favor":      string(favor),
	}
	if payment != nil {
		s.notifier.Notify(ctx, payment.ClientID, domain.NotifyDisputeResolved, payload)
		s.notifier.Notify(ctx, payment.ProfessionalID, domain.NotifyDisputeResolved, payload)
	}

	s.logger.Info().
		Str("dispute_id", dispute.ID).
		Str("favor", string(favor)).
		Str("admin_id", input.AdminID).
		Msg("dispute resolved")

	return dispute, nil
}

// List returns the admin queue, optionally filtered by status.
func (s *DisputeService) List(ctx context.Context, filter ports.ListDisputesFilter) (*ports.DisputeListResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.disputes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.DisputeListResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}
