package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

const collectionPayments = "escrow_payments"

// activeStatuses are the payment statuses that hold funds against a job. The
// partial unique index on job_id spans exactly these, so inserting a second
// active payment for the same job fails with a duplicate key error.
var activeStatuses = []domain.PaymentStatus{
	domain.PaymentPending,
	domain.PaymentPaid,
	domain.PaymentReleased,
}

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

// Create inserts the payment. The unique partial index turns the one-active-
// payment-per-job invariant into an atomic insert-if-absent: the loser of a
// concurrent double-fund gets domain.ErrActivePaymentExists.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.EscrowPayment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrActivePaymentExists
		}
		return err
	}
	return nil
}

// FindByID retrieves a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.EscrowPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.EscrowPayment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindActiveByJob returns the payment currently holding funds for the job.
func (r *PaymentRepository) FindActiveByJob(ctx context.Context, jobID string) (*domain.EscrowPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"job_id": jobID,
		"status": bson.M{"$in": activeStatuses},
	}

	var p domain.EscrowPayment
	err := r.col.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateStatus transitions from → to in a single conditional write. A payment
// no longer in the from status matches nothing and yields domain.ErrConflict,
// so two concurrent settlements cannot both commit.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.PaymentStatus, reason string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     to,
		"settled_at": at,
	}
	if to == domain.PaymentRefunded && reason != "" {
		set["refund_reason"] = reason
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ListByParty returns a page of payments where the user is either side,
// newest first.
func (r *PaymentRepository) ListByParty(ctx context.Context, userID string, page, limit int) ([]*domain.EscrowPayment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"client_id": userID},
		{"professional_id": userID},
	}}

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

	payments := make([]*domain.EscrowPayment, 0, limit)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Earnings aggregates released and held net totals for a professional from
// the ledger. Nothing is cached; every call reflects the current documents.
func (r *PaymentRepository) Earnings(ctx context.Context, professionalID string) (*domain.Earnings, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"professional_id": professionalID,
			"status":          bson.M{"$in": []domain.PaymentStatus{domain.PaymentPaid, domain.PaymentReleased}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"total": bson.M{"$sum": "$net"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.PaymentStatus `bson:"_id"`
		Total  float64              `bson:"total"`
		Count  int                  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	earnings := &domain.Earnings{}
	for _, row := range rows {
		switch row.Status {
		case domain.PaymentReleased:
			earnings.ReleasedTotal = domain.RoundCents(row.Total)
			earnings.ReleasedCount = row.Count
		case domain.PaymentPaid:
			earnings.HeldTotal = domain.RoundCents(row.Total)
			earnings.HeldCount = row.Count
		}
	}
	return earnings, nil
}

// EnsureIndexes creates necessary indexes on the payments collection,
// including the partial unique guard behind Create.
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "job_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": activeStatuses}}),
		},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "professional_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
