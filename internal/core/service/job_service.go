package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

const (
	defaultUrgentTTL = 2 * time.Hour
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// JobService owns the job lifecycle: posting, proposals, acceptance,
// completion and cancellation, plus the read models for browsing.
type JobService struct {
	jobs      ports.JobRepository
	users     ports.UserRepository
	notifier  ports.Notifier
	urgentTTL time.Duration
	logger    zerolog.Logger
}

func NewJobService(jobs ports.JobRepository, users ports.UserRepository, notifier ports.Notifier, urgentTTL time.Duration, logger zerolog.Logger) *JobService {
	if urgentTTL <= 0 {
		urgentTTL = defaultUrgentTTL
	}
	return &JobService{jobs: jobs, users: users, notifier: notifier, urgentTTL: urgentTTL, logger: logger}
}

// Create posts a new job. Urgent jobs get expiry = now + TTL; scheduled jobs
// carry an explicit future target time and no expiry.
func (s *JobService) Create(ctx context.Context, input ports.CreateJobInput) (*domain.Job, error) {
	if strings.TrimSpace(input.Service) == "" {
		return nil, fmt.Errorf("%w: service description is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Location.Address) == "" || strings.TrimSpace(input.Location.City) == "" {
		return nil, fmt.Errorf("%w: location address and city are required", domain.ErrValidation)
	}

	mode := domain.SchedulingMode(input.Mode)
	now := time.Now().UTC()

	job := &domain.Job{
		ID:        uuid.NewString(),
		Reference: generateReference(),
		ClientID:  input.ClientID,
		Service:   input.Service,
		Details:   input.Details,
		Location: domain.Location{
			Address: input.Location.Address,
			City:    input.Location.City,
			ZipCode: input.Location.ZipCode,
		},
		PhotoURLs: input.PhotoURLs,
		Mode:      mode,
		Status:    domain.JobStatusOpen,
		Proposals: []domain.Proposal{},
		CreatedAt: now,
	}

	switch mode {
	case domain.ModeUrgent:
		expires := now.Add(s.urgentTTL)
		job.ExpiresAt = &expires
	case domain.ModeScheduled:
		if input.ScheduledFor == nil || !input.ScheduledFor.After(now) {
			return nil, fmt.Errorf("%w: scheduled jobs require a future target time", domain.ErrValidation)
		}
		t := input.ScheduledFor.UTC()
		job.ScheduledFor = &t
	default:
		return nil, fmt.Errorf("%w: mode must be urgent or scheduled", domain.ErrValidation)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error().Err(err).Msg("failed to create job")
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("reference", job.Reference).
		Str("client_id", job.ClientID).
		Str("mode", string(mode)).
		Msg("job created")

	return job, nil
}

// Browse lists open, unexpired jobs for professionals.
func (s *JobService) Browse(ctx context.Context, input ports.BrowseJobsInput) (*ports.JobListResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	items, total, err := s.jobs.Browse(ctx, ports.BrowseJobsFilter{
		Mode:   input.Mode,
		City:   input.City,
		Search: input.Search,
		Now:    time.Now().UTC(),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]ports.JobSummary, len(items))
	for i, j := range items {
		summaries[i] = ports.JobSummary{Job: j, ProposalCount: len(j.Proposals)}
	}
	return listResult(summaries, total, page, limit), nil
}

// ListMine lists a client's own jobs including expired ones, flagged as such.
func (s *JobService) ListMine(ctx context.Context, input ports.ListMineInput) (*ports.JobListResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	items, total, err := s.jobs.ListByClient(ctx, input.ClientID, page, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summaries := make([]ports.JobSummary, len(items))
	for i, j := range items {
		summaries[i] = ports.JobSummary{Job: j, Expired: j.Expired(now), ProposalCount: len(j.Proposals)}
	}
	return listResult(summaries, total, page, limit), nil
}

// Get assembles the full job view. Clients see only their own jobs with all
// proposals; professionals see open jobs and jobs they bid on, with the
// proposal list narrowed to their own bids; admins see everything.
func (s *JobService) Get(ctx context.Context, input ports.GetJobInput) (*ports.JobDetail, error) {
	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}

	visible := job.Proposals
	switch input.Role {
	case domain.RoleAdmin:
	case domain.RoleClient:
		if job.ClientID != input.ActorID {
			return nil, domain.ErrForbidden
		}
	case domain.RoleProfessional:
		if job.Status != domain.JobStatusOpen && !job.HasActiveProposalFrom(input.ActorID) {
			return nil, domain.ErrForbidden
		}
		own := make([]domain.Proposal, 0, 1)
		for _, p := range job.Proposals {
			if p.ProfessionalID == input.ActorID {
				own = append(own, p)
			}
		}
		visible = own
	default:
		return nil, domain.ErrForbidden
	}

	detail := &ports.JobDetail{
		Job:     job,
		Expired: job.Expired(time.Now().UTC()),
		Client:  s.userSummary(ctx, job.ClientID),
	}
	detail.Proposals = make([]ports.ProposalView, len(visible))
	for i, p := range visible {
		detail.Proposals[i] = ports.ProposalView{
			Proposal:     p,
			Professional: s.userSummary(ctx, p.ProfessionalID),
		}
	}
	return detail, nil
}

// SubmitProposal appends a professional's bid to an open job.
func (s *JobService) SubmitProposal(ctx context.Context, input ports.SubmitProposalInput) (*domain.Proposal, error) {
	if input.Offer <= 0 {
		return nil, fmt.Errorf("%w: offer must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Arrival) == "" {
		return nil, fmt.Errorf("%w: arrival estimate is required", domain.ErrValidation)
	}

	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := openForProposals(job, now, input.ProfessionalID); err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		ID:             uuid.NewString(),
		ProfessionalID: input.ProfessionalID,
		Offer:          domain.RoundCents(input.Offer),
		Arrival:        input.Arrival,
		Note:           input.Note,
		Status:         domain.ProposalPending,
		CreatedAt:      now,
	}

	if err := s.jobs.AddProposal(ctx, job.ID, now, proposal); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, s.diagnoseProposalConflict(ctx, input.JobID, now, input.ProfessionalID)
		}
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("proposal_id", proposal.ID).
		Str("professional_id", input.ProfessionalID).
		Float64("offer", proposal.Offer).
		Msg("proposal submitted")

	return proposal, nil
}

// AcceptProposal commits the accept-and-reject-siblings transition as a
// single conditional write, so two concurrent accepts on the same job can
// never both win.
func (s *JobService) AcceptProposal(ctx context.Context, input ports.AcceptProposalInput) error {
	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return err
	}
	if job.ClientID != input.ClientID {
		return domain.ErrForbidden
	}
	proposal := job.ProposalByID(input.ProposalID)
	if proposal == nil {
		return domain.ErrProposalNotFound
	}
	if job.Status != domain.JobStatusOpen {
		return domain.ErrJobNotOpen
	}
	if proposal.Status != domain.ProposalPending {
		return domain.ErrProposalNotPending
	}

	if err := s.jobs.AcceptProposal(ctx, input.JobID, input.ProposalID, input.ClientID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.diagnoseAcceptConflict(ctx, input.JobID, input.ProposalID)
		}
		return err
	}

	s.notifier.Notify(ctx, proposal.ProfessionalID, domain.NotifyProposalAccepted, map[string]any{
		"job_id":      job.ID,
		"proposal_id": proposal.ID,
		"service":     job.Service,
	})

	s.logger.Info().
		Str("job_id", job.ID).
		Str("proposal_id", proposal.ID).
		Msg("proposal accepted")

	return nil
}

// MarkCompleted lets the assigned professional close out the work.
func (s *JobService) MarkCompleted(ctx context.Context, input ports.CompleteJobInput) error {
	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return err
	}
	accepted := job.AcceptedProposal()
	if accepted == nil || accepted.ProfessionalID != input.ProfessionalID {
		return domain.ErrForbidden
	}
	if job.Status != domain.JobStatusInProgress {
		return domain.ErrJobNotInProgress
	}

	if err := s.jobs.MarkCompleted(ctx, input.JobID, input.ProfessionalID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrJobNotInProgress
		}
		return err
	}

	s.notifier.Notify(ctx, job.ClientID, domain.NotifyJobCompleted, map[string]any{
		"job_id":  job.ID,
		"service": job.Service,
	})

	s.logger.Info().Str("job_id", job.ID).Msg("job completed")
	return nil
}

// Cancel closes a job from open or in_progress. In-progress cancellations
// require a reason for the audit trail.
func (s *JobService) Cancel(ctx context.Context, input ports.CancelJobInput) error {
	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return err
	}

	accepted := job.AcceptedProposal()
	isOwner := job.ClientID == input.ActorID
	isAssigned := accepted != nil && accepted.ProfessionalID == input.ActorID
	if !isOwner && !isAssigned {
		return domain.ErrForbidden
	}

	switch job.Status {
	case domain.JobStatusOpen:
	case domain.JobStatusInProgress:
		if strings.TrimSpace(input.Reason) == "" {
			return fmt.Errorf("%w: reason is required when cancelling an in-progress job", domain.ErrValidation)
		}
	default:
		return domain.ErrJobClosed
	}

	from := []domain.JobStatus{domain.JobStatusOpen, domain.JobStatusInProgress}
	if err := s.jobs.Cancel(ctx, input.JobID, input.Reason, from); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrJobClosed
		}
		return err
	}

	// Tell the other side, when there is one.
	if accepted != nil {
		recipient := accepted.ProfessionalID
		if isAssigned {
			recipient = job.ClientID
		}
		s.notifier.Notify(ctx, recipient, domain.NotifyJobCancelled, map[string]any{
			"job_id":  job.ID,
			"service": job.Service,
			"reason":  input.Reason,
		})
	}

	s.logger.Info().Str("job_id", job.ID).Str("actor_id", input.ActorID).Msg("job cancelled")
	return nil
}

func (s *JobService) userSummary(ctx context.Context, userID string) *ports.UserSummary {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("read model: user lookup failed")
		return nil
	}
	return &ports.UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		City:        u.City,
		PhotoURL:    u.PhotoURL,
		RatingMean:  u.Rating.Mean(),
		RatingCount: u.Rating.Count,
	}
}

// diagnoseProposalConflict re-reads the job after a lost conditional write to
// return the precise precondition that failed.
func (s *JobService) diagnoseProposalConflict(ctx context.Context, jobID string, now time.Time, professionalID string) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := openForProposals(job, now, professionalID); err != nil {
		return err
	}
	return domain.ErrConflict
}

func (s *JobService) diagnoseAcceptConflict(ctx context.Context, jobID, proposalID string) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != domain.JobStatusOpen {
		return domain.ErrJobNotOpen
	}
	if p := job.ProposalByID(proposalID); p == nil {
		return domain.ErrProposalNotFound
	} else if p.Status != domain.ProposalPending {
		return domain.ErrProposalNotPending
	}
	return domain.ErrConflict
}

func openForProposals(job *domain.Job, now time.Time, professionalID string) error {
	if job.Status != domain.JobStatusOpen {
		return domain.ErrJobNotOpen
	}
	if job.Expired(now) {
		return domain.ErrJobExpired
	}
	if job.HasActiveProposalFrom(professionalID) {
		return domain.ErrProposalExists
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func listResult(items []ports.JobSummary, total int64, page, limit int) *ports.JobListResult {
	return &ports.JobListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// generateReference returns a human-facing job code in the format FM-XXXXXXXX.
func generateReference() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("FM-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("FM-%08X", b)
}
