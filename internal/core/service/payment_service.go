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

const defaultFeeRate = 0.05

// PaymentService models the escrow ledger: funding, release, refund and the
// on-demand earnings aggregation. No external money movement happens here.
type PaymentService struct {
	payments ports.PaymentRepository
	jobs     ports.JobRepository
	notifier ports.Notifier
	feeRate  float64
	logger   zerolog.Logger
}

func NewPaymentService(payments ports.PaymentRepository, jobs ports.JobRepository, notifier ports.Notifier, feeRate float64, logger zerolog.Logger) *PaymentService {
	if feeRate <= 0 || feeRate >= 1 {
		feeRate = defaultFeeRate
	}
	return &PaymentService{payments: payments, jobs: jobs, notifier: notifier, feeRate: feeRate, logger: logger}
}

// Fund creates the escrow payment for a job's accepted proposal. Funding is
// modeled as immediate: the record is stored already in paid status. The
// repository's insert-if-absent guard rejects a second active payment for the
// same job.
func (s *PaymentService) Fund(ctx context.Context, input ports.FundEscrowInput) (*domain.EscrowPayment, error) {
	if input.Gross <= 0 {
		return nil, fmt.Errorf("%w: gross amount must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Method) == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}

	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != input.ClientID {
		return nil, domain.ErrForbidden
	}
	accepted := job.AcceptedProposal()
	if accepted == nil {
		return nil, domain.ErrNoAcceptedProposal
	}
	if domain.RoundCents(input.Gross) != accepted.Offer {
		return nil, domain.ErrAmountMismatch
	}

	gross := domain.RoundCents(input.Gross)
	fee, net := domain.ComputeFee(gross, s.feeRate)

	payment := &domain.EscrowPayment{
		ID:             uuid.NewString(),
		JobID:          job.ID,
		ClientID:       input.ClientID,
		ProfessionalID: accepted.ProfessionalID,
		Gross:          gross,
		Fee:            fee,
		Net:            net,
		Method:         input.Method,
		Status:         domain.PaymentPaid,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, accepted.ProfessionalID, domain.NotifyPaymentFunded, map[string]any{
		"payment_id": payment.ID,
		"job_id":     job.ID,
		"net":        payment.Net,
	})

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("job_id", job.ID).
		Float64("gross", gross).
		Float64("fee", fee).
		Msg("escrow funded")

	return payment, nil
}

// Release settles the payment in the professional's favor. Only the paying
// client may release; the transition is a conditional paid→released write.
func (s *PaymentService) Release(ctx context.Context, input ports.ReleaseEscrowInput) (*domain.EscrowPayment, error) {
	payment, err := s.payments.FindByID(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.ClientID != input.ClientID {
		return nil, domain.ErrForbidden
	}
	return s.settle(ctx, payment, domain.PaymentReleased, "")
}

// Refund returns the held amount to the client. Either party may request it
// while the payment is paid; a non-empty reason is mandatory.
func (s *PaymentService) Refund(ctx context.Context, input ports.RefundEscrowInput) (*domain.EscrowPayment, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, fmt.Errorf("%w: refund reason is required", domain.ErrValidation)
	}
	payment, err := s.payments.FindByID(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.ClientID != input.ActorID && payment.ProfessionalID != input.ActorID {
		return nil, domain.ErrForbidden
	}
	return s.settle(ctx, payment, domain.PaymentRefunded, input.Reason)
}

// AdminRelease settles in the professional's favor on administrative
// authority, bypassing the party-identity check. Used by dispute resolution.
func (s *PaymentService) AdminRelease(ctx context.Context, paymentID, note string) (*domain.EscrowPayment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, payment, domain.PaymentReleased, note)
}

// AdminRefund settles in the client's favor on administrative authority.
func (s *PaymentService) AdminRefund(ctx context.Context, paymentID, note string) (*domain.EscrowPayment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, payment, domain.PaymentRefunded, note)
}

// List returns the payments the user participates in.
func (s *PaymentService) List(ctx context.Context, input ports.ListPaymentsInput) (*ports.PaymentListResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)
	items, total, err := s.payments.ListByParty(ctx, input.UserID, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.PaymentListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Earnings aggregates the professional's released and held totals on demand,
// straight from the ledger, so the sums can never drift from the records.
func (s *PaymentService) Earnings(ctx context.Context, professionalID string) (*domain.Earnings, error) {
	return s.payments.Earnings(ctx, professionalID)
}

func (s *PaymentService) settle(ctx context.Context, payment *domain.EscrowPayment, to domain.PaymentStatus, reason string) (*domain.EscrowPayment, error) {
	if payment.Status != domain.PaymentPaid {
		return nil, domain.ErrPaymentNotPaid
	}

	now := time.Now().UTC()
	err := s.payments.UpdateStatus(ctx, payment.ID, domain.PaymentPaid, to, reason, now)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrPaymentNotPaid
		}
		return nil, err
	}

	payment.Status = to
	payment.SettledAt = &now
	if to == domain.PaymentRefunded {
		payment.RefundReason = reason
	}

	kind := domain.NotifyPaymentReleased
	recipient := payment.ProfessionalID
	if to == domain.PaymentRefunded {
		kind = domain.NotifyPaymentRefunded
		recipient = payment.ClientID
	}
	s.notifier.Notify(ctx, recipient, kind, map[string]any{
		"payment_id": payment.ID,
		"job_id":     payment.JobID,
		"net":        payment.Net,
	})

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("status", string(to)).
		Msg("escrow settled")

	return payment, nil
}
