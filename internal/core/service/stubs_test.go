package service

import (
	"context"
	"strings"
	"time"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. The conditional methods re-check the same
// preconditions the real Mongo filters carry, so the services see identical
// ErrConflict behaviour.
// ---------------------------------------------------------------------------

type stubJobRepo struct {
	jobs map[string]*domain.Job
	err  error // if set, every method returns this error
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[string]*domain.Job)}
}

func (r *stubJobRepo) Create(_ context.Context, j *domain.Job) error {
	if r.err != nil {
		return r.err
	}
	clone := cloneJob(j)
	r.jobs[j.ID] = clone
	return nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id string) (*domain.Job, error) {
	if r.err != nil {
		return nil, r.err
	}
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(j), nil
}

func (r *stubJobRepo) Browse(_ context.Context, f ports.BrowseJobsFilter) ([]*domain.Job, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*domain.Job
	for _, j := range r.jobs {
		if j.Status != domain.JobStatusOpen {
			continue
		}
		if j.ExpiresAt != nil && !j.ExpiresAt.After(f.Now) {
			continue
		}
		if f.Mode != "" && string(j.Mode) != f.Mode {
			continue
		}
		if f.City != "" && j.Location.City != f.City {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(j.Service), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, cloneJob(j))
	}
	return paginateJobs(matched, f.Page, f.Limit)
}

func (r *stubJobRepo) ListByClient(_ context.Context, clientID string, page, limit int) ([]*domain.Job, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*domain.Job
	for _, j := range r.jobs {
		if j.ClientID == clientID {
			matched = append(matched, cloneJob(j))
		}
	}
	return paginateJobs(matched, page, limit)
}

func (r *stubJobRepo) AddProposal(_ context.Context, jobID string, now time.Time, p *domain.Proposal) error {
	if r.err != nil {
		return r.err
	}
	j, ok := r.jobs[jobID]
	if !ok || j.Status != domain.JobStatusOpen || j.Expired(now) || j.HasActiveProposalFrom(p.ProfessionalID) {
		return domain.ErrConflict
	}
	j.Proposals = append(j.Proposals, *p)
	return nil
}

func (r *stubJobRepo) AcceptProposal(_ context.Context, jobID, proposalID, clientID string) error {
	if r.err != nil {
		return r.err
	}
	j, ok := r.jobs[jobID]
	if !ok || j.ClientID != clientID || j.Status != domain.JobStatusOpen {
		return domain.ErrConflict
	}
	target := j.ProposalByID(proposalID)
	if target == nil || target.Status != domain.ProposalPending {
		return domain.ErrConflict
	}
	for i := range j.Proposals {
		if j.Proposals[i].ID == proposalID {
			j.Proposals[i].Status = domain.ProposalAccepted
		} else {
			j.Proposals[i].Status = domain.ProposalRejected
		}
	}
	j.Status = domain.JobStatusInProgress
	return nil
}

func (r *stubJobRepo) MarkCompleted(_ context.Context, jobID, professionalID string) error {
	if r.err != nil {
		return r.err
	}
	j, ok := r.jobs[jobID]
	if !ok || j.Status != domain.JobStatusInProgress {
		return domain.ErrConflict
	}
	accepted := j.AcceptedProposal()
	if accepted == nil || accepted.ProfessionalID != professionalID {
		return domain.ErrConflict
	}
	j.Status = domain.JobStatusCompleted
	return nil
}

func (r *stubJobRepo) Cancel(_ context.Context, jobID, reason string, from []domain.JobStatus) error {
	if r.err != nil {
		return r.err
	}
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrConflict
	}
	allowed := false
	for _, s := range from {
		if j.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return domain.ErrConflict
	}
	j.Status = domain.JobStatusCancelled
	j.CancelReason = reason
	return nil
}

func cloneJob(j *domain.Job) *domain.Job {
	clone := *j
	clone.Proposals = append([]domain.Proposal(nil), j.Proposals...)
	return &clone
}

func paginateJobs(jobs []*domain.Job, page, limit int) ([]*domain.Job, int64, error) {
	total := int64(len(jobs))
	if limit <= 0 {
		return jobs, total, nil
	}
	skip := (page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(jobs) {
		return []*domain.Job{}, total, nil
	}
	end := skip + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[skip:end], total, nil
}

// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	r.users[u.ID] = &clone
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) AppendRating(_ context.Context, targetID string, rating *domain.Rating) error {
	u, ok := r.users[targetID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, existing := range u.Ratings {
		if existing.RaterID == rating.RaterID && existing.JobID == rating.JobID {
			return domain.ErrDuplicateRating
		}
	}
	u.Ratings = append(u.Ratings, *rating)
	u.Rating.Sum += rating.Stars
	u.Rating.Count++
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, displayName, phone, city, photoURL string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DisplayName = displayName
	u.Phone = phone
	u.City = city
	u.PhotoURL = photoURL
	return nil
}

// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	payments map[string]*domain.EscrowPayment
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[string]*domain.EscrowPayment)}
}

func (r *stubPaymentRepo) Create(_ context.Context, p *domain.EscrowPayment) error {
	for _, existing := range r.payments {
		if existing.JobID == p.JobID && existing.Status.Active() {
			return domain.ErrActivePaymentExists
		}
	}
	clone := *p
	r.payments[p.ID] = &clone
	return nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id string) (*domain.EscrowPayment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPaymentRepo) FindActiveByJob(_ context.Context, jobID string) (*domain.EscrowPayment, error) {
	for _, p := range r.payments {
		if p.JobID == jobID && p.Status.Active() {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *stubPaymentRepo) UpdateStatus(_ context.Context, id string, from, to domain.PaymentStatus, reason string, at time.Time) error {
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return domain.ErrConflict
	}
	p.Status = to
	p.SettledAt = &at
	if to == domain.PaymentRefunded && reason != "" {
		p.RefundReason = reason
	}
	return nil
}

func (r *stubPaymentRepo) ListByParty(_ context.Context, userID string, page, limit int) ([]*domain.EscrowPayment, int64, error) {
	var matched []*domain.EscrowPayment
	for _, p := range r.payments {
		if p.ClientID == userID || p.ProfessionalID == userID {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *stubPaymentRepo) Earnings(_ context.Context, professionalID string) (*domain.Earnings, error) {
	earnings := &domain.Earnings{}
	for _, p := range r.payments {
		if p.ProfessionalID != professionalID {
			continue
		}
		switch p.Status {
		case domain.PaymentReleased:
			earnings.ReleasedTotal = domain.RoundCents(earnings.ReleasedTotal + p.Net)
			earnings.ReleasedCount++
		case domain.PaymentPaid:
			earnings.HeldTotal = domain.RoundCents(earnings.HeldTotal + p.Net)
			earnings.HeldCount++
		}
	}
	return earnings, nil
}

// ---------------------------------------------------------------------------

type stubDisputeRepo struct {
	disputes map[string]*domain.Dispute
}

func newStubDisputeRepo() *stubDisputeRepo {
	return &stubDisputeRepo{disputes: make(map[string]*domain.Dispute)}
}

func (r *stubDisputeRepo) Create(_ context.Context, d *domain.Dispute) error {
	for _, existing := range r.disputes {
		if existing.PaymentID == d.PaymentID && existing.Status.Open() {
			return domain.ErrDisputeExists
		}
	}
	clone := *d
	r.disputes[d.ID] = &clone
	return nil
}

func (r *stubDisputeRepo) FindByID(_ context.Context, id string) (*domain.Dispute, error) {
	d, ok := r.disputes[id]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDisputeRepo) List(_ context.Context, f ports.ListDisputesFilter) ([]*domain.Dispute, int64, error) {
	var matched []*domain.Dispute
	for _, d := range r.disputes {
		if f.Status != "" && string(d.Status) != f.Status {
			continue
		}
		clone := *d
		matched = append(matched, &clone)
	}
	return matched, int64(len(matched)), nil
}

func (r *stubDisputeRepo) MarkInReview(_ context.Context, id string) error {
	d, ok := r.disputes[id]
	if !ok {
		return domain.ErrDisputeNotFound
	}
	if d.Status != domain.DisputeOpen {
		return domain.ErrConflict
	}
	d.Status = domain.DisputeInReview
	return nil
}

func (r *stubDisputeRepo) Resolve(_ context.Context, id string, status domain.DisputeStatus, resolution, adminID string, at time.Time) error {
	d, ok := r.disputes[id]
	if !ok {
		return domain.ErrDisputeNotFound
	}
	if !d.Status.Open() {
		return domain.ErrConflict
	}
	d.Status = status
	d.Resolution = resolution
	d.ResolvedBy = adminID
	d.ResolvedAt = &at
	return nil
}

// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	notifications []*domain.Notification
	insertErr     error
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *n
	r.notifications = append(r.notifications, &clone)
	return nil
}

func (r *stubNotificationRepo) ListByRecipient(_ context.Context, recipientID string, page, limit int) ([]*domain.Notification, int64, error) {
	var matched []*domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			clone := *n
			matched = append(matched, &clone)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

// ---------------------------------------------------------------------------

// recordingNotifier captures fan-out calls for assertions.
type recordingNotifier struct {
	recipients []string
	kinds      []domain.NotificationKind
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID string, kind domain.NotificationKind, _ map[string]any) {
	n.recipients = append(n.recipients, recipientID)
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) received(kind domain.NotificationKind) bool {
	for _, k := range n.kinds {
		if k == kind {
			return true
		}
	}
	return false
}
