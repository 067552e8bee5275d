package domain

import "time"

const (
	RoleClient       = "client"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// Rating is a single star rating appended to a user by another user, tied to
// the job it was earned on. The (RaterID, JobID) pair is unique per user.
type Rating struct {
	RaterID   string    `json:"rater_id" bson:"rater_id"`
	JobID     string    `json:"job_id" bson:"job_id"`
	Stars     int       `json:"stars" bson:"stars"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// RatingAggregate is the running summary of all ratings a user has received.
// The mean is derived from Sum/Count rather than stored, so it can never
// drift from the appended ratings.
type RatingAggregate struct {
	Sum   int `json:"-" bson:"sum"`
	Count int `json:"count" bson:"count"`
}

// Mean returns the arithmetic mean of all appended ratings, 0 when none exist.
func (a RatingAggregate) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Sum) / float64(a.Count)
}

// User models an account in the identity store. Professionals accumulate
// ratings; clients own jobs. Users are never hard-deleted.
type User struct {
	ID           string          `json:"id" bson:"_id,omitempty"`
	DisplayName  string          `json:"display_name" bson:"display_name"`
	Email        string          `json:"email" bson:"email"`
	PasswordHash string          `json:"-" bson:"password_hash"`
	Role         string          `json:"role" bson:"role"`
	Phone        string          `json:"phone,omitempty" bson:"phone,omitempty"`
	City         string          `json:"city,omitempty" bson:"city,omitempty"`
	PhotoURL     string          `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Rating       RatingAggregate `json:"rating" bson:"rating"`
	Ratings      []Rating        `json:"-" bson:"ratings,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}
