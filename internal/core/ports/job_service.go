package ports

import (
	"context"
	"time"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// LocationInput holds the address a job takes place at.
type LocationInput struct {
	Address string
	City    string
	ZipCode string
}

// CreateJobInput carries all data needed to post a new job.
type CreateJobInput struct {
	ClientID     string
	Service      string
	Details      string
	Location     LocationInput
	PhotoURLs    []string
	Mode         string
	ScheduledFor *time.Time // required when Mode == scheduled
}

// SubmitProposalInput carries a professional's bid on an open job.
type SubmitProposalInput struct {
	JobID          string
	ProfessionalID string
	Offer          float64
	Arrival        string
	Note           string
}

// AcceptProposalInput identifies the proposal a client accepts on their job.
type AcceptProposalInput struct {
	JobID      string
	ProposalID string
	ClientID   string
}

// CompleteJobInput identifies the job the assigned professional marks done.
type CompleteJobInput struct {
	JobID          string
	ProfessionalID string
}

// CancelJobInput carries a cancellation by the owning client or the assigned
// professional. Reason is mandatory when the job is already in progress.
type CancelJobInput struct {
	JobID   string
	ActorID string
	Reason  string
}

// UserSummary is the read-model view of a participant, assembled from the
// identity store so job responses stay decoupled from the user documents.
type UserSummary struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	City        string  `json:"city,omitempty"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	RatingMean  float64 `json:"rating_mean"`
	RatingCount int     `json:"rating_count"`
}

// ProposalView is a proposal enriched with its professional's summary.
type ProposalView struct {
	Proposal     domain.Proposal
	Professional *UserSummary // nil when the identity lookup fails
}

// JobDetail is the full job view returned by Get: the job plus assembled
// participant summaries.
type JobDetail struct {
	Job       *domain.Job
	Expired   bool
	Client    *UserSummary
	Proposals []ProposalView
}

// JobSummary is the lightweight view used in list responses.
type JobSummary struct {
	Job           *domain.Job
	Expired       bool
	ProposalCount int
}

// JobListResult is a page of job summaries.
type JobListResult struct {
	Items      []JobSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// BrowseJobsInput carries the professional browse parameters.
type BrowseJobsInput struct {
	Mode   string
	City   string
	Search string
	Page   int
	Limit  int
}

// ListMineInput carries the client's own-jobs listing parameters.
type ListMineInput struct {
	ClientID string
	Page     int
	Limit    int
}

// GetJobInput identifies a job and the actor requesting it.
type GetJobInput struct {
	JobID   string
	ActorID string
	Role    string
}

// JobService defines the job lifecycle use cases.
type JobService interface {
	Create(ctx context.Context, input CreateJobInput) (*domain.Job, error)
	Browse(ctx context.Context, input BrowseJobsInput) (*JobListResult, error)
	ListMine(ctx context.Context, input ListMineInput) (*JobListResult, error)
	Get(ctx context.Context, input GetJobInput) (*JobDetail, error)
	SubmitProposal(ctx context.Context, input SubmitProposalInput) (*domain.Proposal, error)
	AcceptProposal(ctx context.Context, input AcceptProposalInput) error
	MarkCompleted(ctx context.Context, input CompleteJobInput) error
	Cancel(ctx context.Context, input CancelJobInput) error
}
