package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

func TestNotify_StorageFailureIsSwallowed(t *testing.T) {
	repo := &stubNotificationRepo{insertErr: errors.New("mongo down")}
	svc := NewNotificationService(repo, zerolog.Nop())

	// Must not panic or propagate; fan-out is best effort.
	svc.Notify(context.Background(), "user_1", domain.NotifyPaymentFunded, map[string]any{"payment_id": "p1"})

	if len(repo.notifications) != 0 {
		t.Fatalf("nothing should have been stored")
	}
}

func TestList_ReturnsUnreadCount(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, zerolog.Nop())
	ctx := context.Background()

	svc.Notify(ctx, "user_1", domain.NotifyProposalAccepted, nil)
	svc.Notify(ctx, "user_1", domain.NotifyPaymentFunded, nil)
	svc.Notify(ctx, "user_2", domain.NotifyPaymentFunded, nil)

	result, err := svc.List(ctx, "user_1", 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 || result.UnreadCount != 2 {
		t.Fatalf("expected 2 items / 2 unread, got %d/%d", len(result.Items), result.UnreadCount)
	}

	if err := svc.MarkRead(ctx, result.Items[0].ID, "user_1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	result, _ = svc.List(ctx, "user_1", 1, 20)
	if result.UnreadCount != 1 {
		t.Fatalf("expected 1 unread after mark, got %d", result.UnreadCount)
	}
}

func TestMarkRead_IsIdempotentAndScoped(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, zerolog.Nop())
	ctx := context.Background()

	svc.Notify(ctx, "user_1", domain.NotifyProposalAccepted, nil)
	id := repo.notifications[0].ID

	if err := svc.MarkRead(ctx, id, "user_1"); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := svc.MarkRead(ctx, id, "user_1"); err != nil {
		t.Fatalf("second mark must be a no-op, got %v", err)
	}

	// Another recipient cannot touch it.
	err := svc.MarkRead(ctx, id, "user_2")
	if !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign recipient, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, zerolog.Nop())
	ctx := context.Background()

	svc.Notify(ctx, "user_1", domain.NotifyProposalAccepted, nil)
	svc.Notify(ctx, "user_1", domain.NotifyPaymentFunded, nil)

	if err := svc.MarkAllRead(ctx, "user_1"); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	result, _ := svc.List(ctx, "user_1", 1, 20)
	if result.UnreadCount != 0 {
		t.Fatalf("expected 0 unread, got %d", result.UnreadCount)
	}
}
