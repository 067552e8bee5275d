package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes of every collection, including the
// partial unique guards the concurrency invariants rest on. Run at startup
// before serving traffic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	creators := map[string]interface{ EnsureIndexes(context.Context) error }{
		"users":         NewUserRepository(db),
		"jobs":          NewJobRepository(db),
		"payments":      NewPaymentRepository(db),
		"disputes":      NewDisputeRepository(db),
		"notifications": NewNotificationRepository(db),
	}
	for name, c := range creators {
		if err := c.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
