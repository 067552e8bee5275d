package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// NotificationListResult is a page of notifications with the unread count.
type NotificationListResult struct {
	Items       []*domain.Notification
	Total       int64
	UnreadCount int64
	Page        int
	Limit       int
}

// Notifier is the write side of the dispatcher, consumed by the lifecycle
// services as a fire-and-forget side effect of state transitions.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind domain.NotificationKind, payload map[string]any)
}

// NotificationService defines the polling consumer's use cases.
type NotificationService interface {
	Notifier
	List(ctx context.Context, recipientID string, page, limit int) (*NotificationListResult, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
