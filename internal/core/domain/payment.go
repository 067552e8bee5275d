package domain

import (
	"math"
	"time"
)

// PaymentStatus represents the lifecycle state of an escrow payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentReleased  PaymentStatus = "released"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// paymentTransitions defines the allowed transitions. Released, refunded and
// cancelled are terminal; funding auto-advances pending→paid synchronously
// since no external gateway callback exists.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentCancelled},
	PaymentPaid:    {PaymentReleased, PaymentRefunded, PaymentCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether the payment still holds funds against its job. A job
// may have at most one active payment at a time.
func (s PaymentStatus) Active() bool {
	return s != PaymentCancelled && s != PaymentRefunded
}

// EscrowPayment is the internal ledger record of funds held for a job. No
// external money movement is modeled; only the status changes. Immutable once
// released or refunded.
type EscrowPayment struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	JobID          string        `json:"job_id" bson:"job_id"`
	ClientID       string        `json:"client_id" bson:"client_id"`
	ProfessionalID string        `json:"professional_id" bson:"professional_id"`
	Gross          float64       `json:"gross" bson:"gross"`
	Fee            float64       `json:"fee" bson:"fee"`
	Net            float64       `json:"net" bson:"net"`
	Method         string        `json:"method" bson:"method"`
	Status         PaymentStatus `json:"status" bson:"status"`
	RefundReason   string        `json:"refund_reason,omitempty" bson:"refund_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	SettledAt      *time.Time    `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// Earnings is the on-demand aggregation of a professional's payments: the sum
// of released net amounts and the sum still held in paid escrow. Computed from
// the ledger on every read, never cached.
type Earnings struct {
	ReleasedTotal float64 `json:"released_total"`
	ReleasedCount int     `json:"released_count"`
	HeldTotal     float64 `json:"held_total"`
	HeldCount     int     `json:"held_count"`
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeFee splits a gross amount into platform fee and professional net
// using the configured rate. net = gross − fee holds exactly at cent precision.
func ComputeFee(gross, rate float64) (fee, net float64) {
	fee = RoundCents(gross * rate)
	net = RoundCents(gross - fee)
	return fee, net
}
