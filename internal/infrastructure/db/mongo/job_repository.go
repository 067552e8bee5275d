package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

const collectionJobs = "jobs"

type JobRepository struct {
	col *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{col: db.Collection(collectionJobs)}
}

// Create inserts a new job document.
func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, j)
	return err
}

// FindByID retrieves a job by id.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var j domain.Job
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

// Browse returns a page of open jobs visible to professionals. Urgent jobs
// past their expires_at are filtered out at the query level; scheduled jobs
// carry no expires_at and always pass.
func (r *JobRepository) Browse(ctx context.Context, f ports.BrowseJobsFilter) ([]*domain.Job, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"status": domain.JobStatusOpen,
		"$or": []bson.M{
			{"expires_at": bson.M{"$gt": f.Now}},
			{"expires_at": nil},
		},
	}
	if f.Mode != "" {
		filter["mode"] = f.Mode
	}
	if f.City != "" {
		filter["location.city"] = f.City
	}
	if f.Search != "" {
		filter["service"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}

	return r.findPage(ctx, filter, f.Page, f.Limit)
}

// ListByClient returns a page of the client's own jobs, newest first,
// including expired and closed ones.
func (r *JobRepository) ListByClient(ctx context.Context, clientID string, page, limit int) ([]*domain.Job, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findPage(ctx, bson.M{"client_id": clientID}, page, limit)
}

func (r *JobRepository) findPage(ctx context.Context, filter bson.M, page, limit int) ([]*domain.Job, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	jobs := make([]*domain.Job, 0, limit)
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// AddProposal appends the proposal in a single conditional write. The filter
// carries every precondition (job open, not expired, no active proposal from
// the same professional) so a concurrent transition makes the write match
// nothing.
func (r *JobRepository) AddProposal(ctx context.Context, jobID string, now time.Time, p *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    jobID,
		"status": domain.JobStatusOpen,
		"$or": []bson.M{
			{"expires_at": bson.M{"$gt": now}},
			{"expires_at": nil},
		},
		"proposals": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"professional_id": p.ProfessionalID,
			"status":          bson.M{"$ne": domain.ProposalRejected},
		}}},
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"proposals": p}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// AcceptProposal performs the full acceptance transition in one write: the
// target proposal becomes accepted, every sibling rejected, and the job
// in_progress. The filter requires the job open, owned by clientID, and the
// target proposal still pending, so at most one acceptance can ever commit.
func (r *JobRepository) AcceptProposal(ctx context.Context, jobID, proposalID, clientID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":       jobID,
		"client_id": clientID,
		"status":    domain.JobStatusOpen,
		"proposals": bson.M{"$elemMatch": bson.M{
			"id":     proposalID,
			"status": domain.ProposalPending,
		}},
	}
	update := bson.M{"$set": bson.M{
		"status":                      domain.JobStatusInProgress,
		"proposals.$[target].status":  domain.ProposalAccepted,
		"proposals.$[sibling].status": domain.ProposalRejected,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"target.id": proposalID},
			bson.M{"sibling.id": bson.M{"$ne": proposalID}},
		},
	})

	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkCompleted transitions in_progress → completed iff the caller holds the
// accepted proposal.
func (r *JobRepository) MarkCompleted(ctx context.Context, jobID, professionalID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    jobID,
		"status": domain.JobStatusInProgress,
		"proposals": bson.M{"$elemMatch": bson.M{
			"professional_id": professionalID,
			"status":          domain.ProposalAccepted,
		}},
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": domain.JobStatusCompleted}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Cancel transitions the job to cancelled from any of the given statuses.
func (r *JobRepository) Cancel(ctx context.Context, jobID, reason string, from []domain.JobStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": domain.JobStatusCancelled}
	if reason != "" {
		set["cancel_reason"] = reason
	}

	res, err := r.col.UpdateOne(ctx, bson.M{
		"_id":    jobID,
		"status": bson.M{"$in": from},
	}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the jobs collection.
func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
