package domain

import "time"

// DisputeStatus represents the lifecycle state of a dispute.
type DisputeStatus string

const (
	DisputeOpen                 DisputeStatus = "open"
	DisputeInReview             DisputeStatus = "in_review"
	DisputeResolvedClient       DisputeStatus = "resolved_favor_client"
	DisputeResolvedProfessional DisputeStatus = "resolved_favor_professional"
	DisputeCancelled            DisputeStatus = "cancelled"
)

// Open reports whether the dispute still blocks the payment (counts toward
// the one-open-dispute-per-payment invariant).
func (s DisputeStatus) Open() bool {
	return s == DisputeOpen || s == DisputeInReview
}

// DisputeFavor names the winning party of an administrative resolution.
type DisputeFavor string

const (
	FavorClient       DisputeFavor = "client"
	FavorProfessional DisputeFavor = "professional"
)

// MaxEvidence caps the number of evidence references attached to a dispute.
const MaxEvidence = 5

// Dispute is an escalation against a paid escrow payment. Either party may
// open one; only an administrative actor resolves it, which releases or
// refunds the linked payment regardless of party consent.
type Dispute struct {
	ID         string        `json:"id" bson:"_id,omitempty"`
	PaymentID  string        `json:"payment_id" bson:"payment_id"`
	JobID      string        `json:"job_id" bson:"job_id"`
	CreatorID  string        `json:"creator_id" bson:"creator_id"`
	Category   string        `json:"category" bson:"category"`
	Reason     string        `json:"reason" bson:"reason"`
	Evidence   []string      `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Status     DisputeStatus `json:"status" bson:"status"`
	Resolution string        `json:"resolution,omitempty" bson:"resolution,omitempty"`
	ResolvedBy string        `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
