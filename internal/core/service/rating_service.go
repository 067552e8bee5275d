package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// RatingService appends star ratings to the identity store and keeps the
// target's aggregate in step with the appended list.
type RatingService struct {
	users  ports.UserRepository
	jobs   ports.JobRepository
	logger zerolog.Logger
}

func NewRatingService(users ports.UserRepository, jobs ports.JobRepository, logger zerolog.Logger) *RatingService {
	return &RatingService{users: users, jobs: jobs, logger: logger}
}

// Submit appends one rating. Stars must be 1..5, the comment non-empty, and
// self-rating is rejected. When a job context is given, the job must be
// completed and the rater one of its participants; the repository guard
// enforces at most one rating per (rater, job) pair on the target.
func (s *RatingService) Submit(ctx context.Context, input ports.SubmitRatingInput) (*domain.RatingAggregate, error) {
	if input.Stars < 1 || input.Stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Comment) == "" {
		return nil, fmt.Errorf("%w: comment is required", domain.ErrValidation)
	}
	if input.TargetUserID == input.RaterUserID {
		return nil, fmt.Errorf("%w: cannot rate yourself", domain.ErrValidation)
	}

	if _, err := s.users.FindByID(ctx, input.TargetUserID); err != nil {
		return nil, err
	}

	if input.JobID != "" {
		job, err := s.jobs.FindByID(ctx, input.JobID)
		if err != nil {
			return nil, err
		}
		if job.Status != domain.JobStatusCompleted {
			return nil, domain.ErrJobNotCompleted
		}
		accepted := job.AcceptedProposal()
		isOwner := job.ClientID == input.RaterUserID
		isAssigned := accepted != nil && accepted.ProfessionalID == input.RaterUserID
		if !isOwner && !isAssigned {
			return nil, domain.ErrForbidden
		}
	}

	rating := &domain.Rating{
		RaterID:   input.RaterUserID,
		JobID:     input.JobID,
		Stars:     input.Stars,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.AppendRating(ctx, input.TargetUserID, rating); err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, input.TargetUserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("target_id", input.TargetUserID).
		Str("rater_id", input.RaterUserID).
		Int("stars", input.Stars).
		Float64("mean", target.Rating.Mean()).
		Msg("rating submitted")

	return &target.Rating, nil
}

// Profile returns the public view of a user.
func (s *RatingService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
