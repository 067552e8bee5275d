package domain

import "time"

// NotificationKind enumerates the state transitions that fan out to users.
type NotificationKind string

const (
	NotifyProposalAccepted NotificationKind = "proposal_accepted"
	NotifyJobCompleted     NotificationKind = "job_completed"
	NotifyJobCancelled     NotificationKind = "job_cancelled"
	NotifyPaymentFunded    NotificationKind = "payment_funded"
	NotifyPaymentReleased  NotificationKind = "payment_released"
	NotifyPaymentRefunded  NotificationKind = "payment_refunded"
	NotifyDisputeOpened    NotificationKind = "dispute_opened"
	NotifyDisputeResolved  NotificationKind = "dispute_resolved"
)

// Notification is a persisted fan-out record consumed by polling clients.
// Only the read flag ever changes after creation; records are never deleted.
type Notification struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	RecipientID string           `json:"recipient_id" bson:"recipient_id"`
	Kind        NotificationKind `json:"kind" bson:"kind"`
	Payload     map[string]any   `json:"payload,omitempty" bson:"payload,omitempty"`
	Read        bool             `json:"read" bson:"read"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
}
