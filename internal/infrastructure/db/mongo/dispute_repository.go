package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

const collectionDisputes = "disputes"

// openStatuses are the dispute statuses that block a payment. The partial
// unique index on payment_id spans exactly these.
var openStatuses = []domain.DisputeStatus{
	domain.DisputeOpen,
	domain.DisputeInReview,
}

type DisputeRepository struct {
	col *mongo.Collection
}

func NewDisputeRepository(db *mongo.Database) *DisputeRepository {
	return &DisputeRepository{col: db.Collection(collectionDisputes)}
}

// Create inserts the dispute. The partial unique index rejects a second open
// dispute for the same payment with a duplicate key error.
func (r *DisputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDisputeExists
		}
		return err
	}
	return nil
}

// FindByID retrieves a dispute by id.
func (r *DisputeRepository) FindByID(ctx context.Context, id string) (*domain.Dispute, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Dispute
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns a page of disputes for the admin queue, newest first.
func (r *DisputeRepository) List(ctx context.Context, f ports.ListDisputesFilter) ([]*domain.Dispute, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	disputes := make([]*domain.Dispute, 0, f.Limit)
	if err := cursor.All(ctx, &disputes); err != nil {
		return nil, 0, err
	}
	return disputes, total, nil
}

// MarkInReview transitions open → in_review conditionally.
func (r *DisputeRepository) MarkInReview(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": domain.DisputeOpen,
	}, bson.M{"$set": bson.M{"status": domain.DisputeInReview}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

// Resolve closes the dispute in one conditional write, recording the
// resolution text and the resolving admin.
func (r *DisputeRepository) Resolve(ctx context.Context, id string, status domain.DisputeStatus, resolution, adminID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": bson.M{"$in": openStatuses},
	}, bson.M{"$set": bson.M{
		"status":      status,
		"resolution":  resolution,
		"resolved_by": adminID,
		"resolved_at": at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

// missingOrConflict disambiguates a zero-match conditional write: the dispute
// either never existed or already left the expected status.
func (r *DisputeRepository) missingOrConflict(ctx context.Context, id string) error {
	count, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrDisputeNotFound
	}
	return domain.ErrConflict
}

// EnsureIndexes creates necessary indexes on the disputes collection,
// including the one-open-dispute-per-payment guard.
func (r *DisputeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "payment_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": openStatuses}}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
