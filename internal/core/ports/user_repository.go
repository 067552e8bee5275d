package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// UserRepository is the identity store: accounts, profiles, and the embedded
// rating list with its aggregate.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// AppendRating pushes the rating and increments the aggregate sum/count in
	// a single conditional write guarded on no existing rating by the same
	// (rater, job) pair. domain.ErrDuplicateRating when the guard fails.
	AppendRating(ctx context.Context, targetID string, r *domain.Rating) error
	// UpdateProfile sets the mutable profile fields.
	UpdateProfile(ctx context.Context, id string, displayName, phone, city, photoURL string) error
}
