package ports

import (
	"context"
	"time"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// BrowseJobsFilter carries the query parameters for the professional-facing
// browse listing. Expired urgent jobs are excluded at the query level.
type BrowseJobsFilter struct {
	Mode   string    // optional: filter by scheduling mode
	City   string    // optional: filter by location city
	Search string    // optional: partial match on service description
	Now    time.Time // open jobs with expires_at <= Now are excluded
	Page   int       // 1-based
	Limit  int       // capped at 100 by the service
}

// JobRepository defines persistence operations for jobs and their embedded
// proposals. The conditional methods perform single atomic writes: the state
// precondition is part of the filter, so a concurrent transition makes the
// write match nothing and domain.ErrConflict is returned.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)

	// Browse returns a page of open, unexpired jobs and the total count.
	Browse(ctx context.Context, filter BrowseJobsFilter) ([]*domain.Job, int64, error)
	// ListByClient returns a page of the client's own jobs, newest first,
	// including expired ones.
	ListByClient(ctx context.Context, clientID string, page, limit int) ([]*domain.Job, int64, error)

	// AddProposal appends a proposal iff the job is open, unexpired, and the
	// professional holds no active proposal on it.
	AddProposal(ctx context.Context, jobID string, now time.Time, p *domain.Proposal) error
	// AcceptProposal atomically marks the target proposal accepted, all
	// siblings rejected, and the job in_progress, iff the job is still open,
	// owned by clientID, and the proposal still pending. Either the full
	// transition commits or none of it does.
	AcceptProposal(ctx context.Context, jobID, proposalID, clientID string) error
	// MarkCompleted transitions in_progress → completed iff professionalID
	// matches the accepted proposal.
	MarkCompleted(ctx context.Context, jobID, professionalID string) error
	// Cancel transitions the job to cancelled from any of the given statuses.
	Cancel(ctx context.Context, jobID, reason string, from []domain.JobStatus) error
}
