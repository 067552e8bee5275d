package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// SubmitRatingInput carries one star rating from a rater to a target user in
// the context of a job. At most one rating per (rater, job) pair is accepted.
type SubmitRatingInput struct {
	TargetUserID string
	RaterUserID  string
	Stars        int
	Comment      string
	JobID        string
}

// RatingService appends ratings and maintains the target's aggregate.
type RatingService interface {
	Submit(ctx context.Context, input SubmitRatingInput) (*domain.RatingAggregate, error)
	// Profile returns the public view of a user, including the aggregate.
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
