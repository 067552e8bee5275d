package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// NotificationService is the fan-out side of every lifecycle transition and
// the read side for polling clients.
type NotificationService struct {
	repo   ports.NotificationRepository
	logger zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, logger zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify persists a notification for the recipient. Best-effort: a storage
// failure is logged but never propagated, so a lifecycle transition cannot be
// rolled back by its own fan-out.
func (s *NotificationService) Notify(ctx context.Context, recipientID string, kind domain.NotificationKind, payload map[string]any) {
	n := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Kind:        kind,
		Payload:     payload,
		Read:        false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		s.logger.Warn().Err(err).
			Str("recipient_id", recipientID).
			Str("kind", string(kind)).
			Msg("failed to persist notification")
		return
	}
	s.logger.Debug().
		Str("recipient_id", recipientID).
		Str("kind", string(kind)).
		Msg("notification created")
}

// List returns the recipient's notifications newest first plus the unread count.
func (s *NotificationService) List(ctx context.Context, recipientID string, page, limit int) (*ports.NotificationListResult, error) {
	page, limit = normalizePage(page, limit)

	items, total, err := s.repo.ListByRecipient(ctx, recipientID, page, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &ports.NotificationListResult{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// MarkRead flips one notification's read flag. Re-invocation is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

// MarkAllRead flips every unread notification of the recipient.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}
