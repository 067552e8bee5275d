package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

func newJobService(jobs *stubJobRepo, users *stubUserRepo, notifier *recordingNotifier) *JobService {
	return NewJobService(jobs, users, notifier, 2*time.Hour, zerolog.Nop())
}

func seedOpenJob(repo *stubJobRepo, id, clientID string) *domain.Job {
	job := &domain.Job{
		ID:        id,
		Reference: "FM-TEST0001",
		ClientID:  clientID,
		Service:   "pipe repair",
		Location:  domain.Location{Address: "12 Main St", City: "Monterrey"},
		Mode:      domain.ModeUrgent,
		Status:    domain.JobStatusOpen,
		Proposals: []domain.Proposal{},
		CreatedAt: time.Now().UTC(),
	}
	expires := time.Now().UTC().Add(time.Hour)
	job.ExpiresAt = &expires
	_ = repo.Create(context.Background(), job)
	return job
}

func TestCreate_UrgentJobGetsExpiry(t *testing.T) {
	repo := newStubJobRepo()
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	before := time.Now().UTC()
	job, err := svc.Create(context.Background(), ports.CreateJobInput{
		ClientID: "client_1",
		Service:  "leak fix",
		Location: ports.LocationInput{Address: "5 Oak Ave", City: "Monterrey"},
		Mode:     "urgent",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != domain.JobStatusOpen {
		t.Fatalf("expected open status, got %s", job.Status)
	}
	if job.ExpiresAt == nil {
		t.Fatalf("urgent job must carry an expiry")
	}
	ttl := job.ExpiresAt.Sub(before)
	if ttl < time.Hour+59*time.Minute || ttl > 2*time.Hour+time.Minute {
		t.Fatalf("expected ~2h TTL, got %v", ttl)
	}
	if !strings.HasPrefix(job.Reference, "FM-") {
		t.Fatalf("unexpected reference format: %s", job.Reference)
	}
}

func TestCreate_ScheduledJobRequiresFutureTime(t *testing.T) {
	svc := newJobService(newStubJobRepo(), newStubUserRepo(), &recordingNotifier{})

	past := time.Now().UTC().Add(-time.Hour)
	_, err := svc.Create(context.Background(), ports.CreateJobInput{
		ClientID:     "client_1",
		Service:      "wall painting",
		Location:     ports.LocationInput{Address: "5 Oak Ave", City: "Monterrey"},
		Mode:         "scheduled",
		ScheduledFor: &past,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	future := time.Now().UTC().Add(48 * time.Hour)
	job, err := svc.Create(context.Background(), ports.CreateJobInput{
		ClientID:     "client_1",
		Service:      "wall painting",
		Location:     ports.LocationInput{Address: "5 Oak Ave", City: "Monterrey"},
		Mode:         "scheduled",
		ScheduledFor: &future,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ExpiresAt != nil {
		t.Fatalf("scheduled jobs must not expire")
	}
}

func TestSubmitProposal_Succeeds(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	p, err := svc.SubmitProposal(context.Background(), ports.SubmitProposalInput{
		JobID:          "job_1",
		ProfessionalID: "pro_1",
		Offer:          120.504,
		Arrival:        "45m",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != domain.ProposalPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
	if p.Offer != 120.50 {
		t.Fatalf("offer should be rounded to cents, got %v", p.Offer)
	}
}

func TestSubmitProposal_DuplicateActiveProposal(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	input := ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"}
	if _, err := svc.SubmitProposal(context.Background(), input); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.SubmitProposal(context.Background(), input)
	if !errors.Is(err, domain.ErrProposalExists) {
		t.Fatalf("expected ErrProposalExists, got %v", err)
	}
}

func TestSubmitProposal_ExpiredJob(t *testing.T) {
	repo := newStubJobRepo()
	job := seedOpenJob(repo, "job_1", "client_1")
	expired := time.Now().UTC().Add(-time.Minute)
	repo.jobs[job.ID].ExpiresAt = &expired

	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})
	_, err := svc.SubmitProposal(context.Background(), ports.SubmitProposalInput{
		JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h",
	})
	if !errors.Is(err, domain.ErrJobExpired) {
		t.Fatalf("expected ErrJobExpired, got %v", err)
	}
}

func TestAcceptProposal_RejectsSiblingsAndAssignsJob(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	notifier := &recordingNotifier{}
	svc := newJobService(repo, newStubUserRepo(), notifier)

	ctx := context.Background()
	p1, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})
	p2, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_2", Offer: 90, Arrival: "2h"})

	err := svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p1.ID, ClientID: "client_1"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	job := repo.jobs["job_1"]
	if job.Status != domain.JobStatusInProgress {
		t.Fatalf("expected in_progress, got %s", job.Status)
	}
	if job.ProposalByID(p1.ID).Status != domain.ProposalAccepted {
		t.Fatalf("target proposal not accepted")
	}
	if job.ProposalByID(p2.ID).Status != domain.ProposalRejected {
		t.Fatalf("sibling proposal not rejected")
	}
	if !notifier.received(domain.NotifyProposalAccepted) {
		t.Fatalf("professional was not notified")
	}
}

func TestAcceptProposal_OnlyOneAcceptWins(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	ctx := context.Background()
	p1, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})
	p2, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_2", Offer: 90, Arrival: "2h"})

	if err := svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p1.ID, ClientID: "client_1"}); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	err := svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p2.ID, ClientID: "client_1"})
	if !errors.Is(err, domain.ErrJobNotOpen) {
		t.Fatalf("expected ErrJobNotOpen for second accept, got %v", err)
	}

	accepted := 0
	for _, p := range repo.jobs["job_1"].Proposals {
		if p.Status == domain.ProposalAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted proposal, got %d", accepted)
	}
}

func TestAcceptProposal_NotOwner(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	ctx := context.Background()
	p, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})

	err := svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p.ID, ClientID: "client_2"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMarkCompleted_OnlyAssignedProfessional(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	notifier := &recordingNotifier{}
	svc := newJobService(repo, newStubUserRepo(), notifier)

	ctx := context.Background()
	p, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})
	_ = svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p.ID, ClientID: "client_1"})

	err := svc.MarkCompleted(ctx, ports.CompleteJobInput{JobID: "job_1", ProfessionalID: "pro_2"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}

	if err := svc.MarkCompleted(ctx, ports.CompleteJobInput{JobID: "job_1", ProfessionalID: "pro_1"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if repo.jobs["job_1"].Status != domain.JobStatusCompleted {
		t.Fatalf("job not completed")
	}
	if !notifier.received(domain.NotifyJobCompleted) {
		t.Fatalf("client was not notified")
	}
}

func TestCancel_InProgressRequiresReason(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})

	ctx := context.Background()
	p, _ := svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})
	_ = svc.AcceptProposal(ctx, ports.AcceptProposalInput{JobID: "job_1", ProposalID: p.ID, ClientID: "client_1"})

	err := svc.Cancel(ctx, ports.CancelJobInput{JobID: "job_1", ActorID: "client_1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	if err := svc.Cancel(ctx, ports.CancelJobInput{JobID: "job_1", ActorID: "client_1", Reason: "found someone else"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if repo.jobs["job_1"].Status != domain.JobStatusCancelled {
		t.Fatalf("job not cancelled")
	}
}

func TestCancel_TerminalJobIsConflict(t *testing.T) {
	repo := newStubJobRepo()
	job := seedOpenJob(repo, "job_1", "client_1")
	repo.jobs[job.ID].Status = domain.JobStatusCompleted

	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})
	err := svc.Cancel(context.Background(), ports.CancelJobInput{JobID: "job_1", ActorID: "client_1", Reason: "x"})
	if !errors.Is(err, domain.ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
}

func TestBrowse_ExcludesExpiredJobs(t *testing.T) {
	repo := newStubJobRepo()
	seedOpenJob(repo, "job_live", "client_1")
	expiredJob := seedOpenJob(repo, "job_expired", "client_1")
	past := time.Now().UTC().Add(-time.Minute)
	repo.jobs[expiredJob.ID].ExpiresAt = &past

	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})
	result, err := svc.Browse(context.Background(), ports.BrowseJobsInput{})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Job.ID != "job_live" {
		t.Fatalf("expected only the live job, got %d items", len(result.Items))
	}
}

func TestListMine_FlagsExpiredJobs(t *testing.T) {
	repo := newStubJobRepo()
	job := seedOpenJob(repo, "job_1", "client_1")
	past := time.Now().UTC().Add(-time.Minute)
	repo.jobs[job.ID].ExpiresAt = &past

	svc := newJobService(repo, newStubUserRepo(), &recordingNotifier{})
	result, err := svc.ListMine(context.Background(), ports.ListMineInput{ClientID: "client_1"})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if !result.Items[0].Expired {
		t.Fatalf("expired job must be flagged in the owner listing")
	}
	if result.Items[0].Job.Status != domain.JobStatusOpen {
		t.Fatalf("expiry must not rewrite the stored status")
	}
}

func TestGet_ProfessionalSeesOnlyOwnProposals(t *testing.T) {
	repo := newStubJobRepo()
	users := newStubUserRepo()
	users.users["client_1"] = &domain.User{ID: "client_1", DisplayName: "Ana"}
	seedOpenJob(repo, "job_1", "client_1")
	svc := newJobService(repo, users, &recordingNotifier{})

	ctx := context.Background()
	_, _ = svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_1", Offer: 100, Arrival: "1h"})
	_, _ = svc.SubmitProposal(ctx, ports.SubmitProposalInput{JobID: "job_1", ProfessionalID: "pro_2", Offer: 90, Arrival: "2h"})

	detail, err := svc.Get(ctx, ports.GetJobInput{JobID: "job_1", ActorID: "pro_1", Role: domain.RoleProfessional})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Proposals) != 1 || detail.Proposals[0].Proposal.ProfessionalID != "pro_1" {
		t.Fatalf("professional must see only their own proposals")
	}

	detail, err = svc.Get(ctx, ports.GetJobInput{JobID: "job_1", ActorID: "client_1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("get as owner: %v", err)
	}
	if len(detail.Proposals) != 2 {
		t.Fatalf("owner must see all proposals, got %d", len(detail.Proposals))
	}

	_, err = svc.Get(ctx, ports.GetJobInput{JobID: "job_1", ActorID: "client_2", Role: domain.RoleClient})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign client, got %v", err)
	}
}
