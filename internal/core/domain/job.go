package domain

import "time"

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// jobTransitions defines the allowed state machine transitions. Completed and
// cancelled are terminal.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SchedulingMode distinguishes urgent jobs (short TTL, first-come) from
// scheduled jobs (fixed future target time, no expiry).
type SchedulingMode string

const (
	ModeUrgent    SchedulingMode = "urgent"
	ModeScheduled SchedulingMode = "scheduled"
)

// ProposalStatus represents the acceptance state of a professional's bid.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// Location represents the address a job takes place at.
type Location struct {
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	ZipCode string `json:"zip_code" bson:"zip_code"`
}

// Proposal is a professional's bid against a job, embedded in the job document.
type Proposal struct {
	ID             string         `json:"id" bson:"id"`
	ProfessionalID string         `json:"professional_id" bson:"professional_id"`
	Offer          float64        `json:"offer" bson:"offer"`
	Arrival        string         `json:"arrival" bson:"arrival"`
	Note           string         `json:"note,omitempty" bson:"note,omitempty"`
	Status         ProposalStatus `json:"status" bson:"status"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// Job is the lifecycle root: a unit of requested work posted by a client,
// bid on by professionals. Retained indefinitely for history and audit.
type Job struct {
	ID           string         `json:"id" bson:"_id,omitempty"`
	Reference    string         `json:"reference" bson:"reference"`
	ClientID     string         `json:"client_id" bson:"client_id"`
	Service      string         `json:"service" bson:"service"`
	Details      string         `json:"details,omitempty" bson:"details,omitempty"`
	Location     Location       `json:"location" bson:"location"`
	PhotoURLs    []string       `json:"photo_urls,omitempty" bson:"photo_urls,omitempty"`
	Mode         SchedulingMode `json:"mode" bson:"mode"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	Status       JobStatus      `json:"status" bson:"status"`
	CancelReason string         `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	Proposals    []Proposal     `json:"proposals" bson:"proposals"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// Expired reports whether an open urgent job's TTL has passed. Expiry is a
// view-time predicate: the stored status stays open, but expired jobs are
// excluded from professional browse results.
func (j *Job) Expired(now time.Time) bool {
	return j.Status == JobStatusOpen && j.ExpiresAt != nil && now.After(*j.ExpiresAt)
}

// AcceptedProposal returns the single accepted proposal, or nil.
func (j *Job) AcceptedProposal() *Proposal {
	for i := range j.Proposals {
		if j.Proposals[i].Status == ProposalAccepted {
			return &j.Proposals[i]
		}
	}
	return nil
}

// ProposalByID returns the embedded proposal with the given id, or nil.
func (j *Job) ProposalByID(id string) *Proposal {
	for i := range j.Proposals {
		if j.Proposals[i].ID == id {
			return &j.Proposals[i]
		}
	}
	return nil
}

// HasActiveProposalFrom reports whether the professional already holds a
// non-rejected proposal on this job.
func (j *Job) HasActiveProposalFrom(professionalID string) bool {
	for i := range j.Proposals {
		if j.Proposals[i].ProfessionalID == professionalID && j.Proposals[i].Status != ProposalRejected {
			return true
		}
	}
	return false
}
