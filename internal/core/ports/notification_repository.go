package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// NotificationRepository defines persistence for the notification fan-out.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	// ListByRecipient returns the recipient's notifications newest first plus
	// the count of unread ones.
	ListByRecipient(ctx context.Context, recipientID string, page, limit int) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	// MarkRead flips the read flag. Idempotent: marking an already-read
	// notification is a no-op, not an error.
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
