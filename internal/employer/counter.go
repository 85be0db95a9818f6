// Package employer maintains the jobsPosted counter on employer accounts.
// The counter is a materialized view of the jobs collection: writes are best
// effort and Reconcile rebuilds it.
package employer

import (
	"context"
	"fmt"
	"time"

	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counter adjusts an employer's posted-jobs counter.
type Counter interface {
	Increment(ctx context.Context, employerID string, delta int) error
}

// Reconciler overwrites counters with authoritative values.
type Reconciler interface {
	Reconcile(ctx context.Context, counts map[string]int64) (int64, error)
}

// Nop discards counter updates.
type Nop struct{}

func (Nop) Increment(context.Context, string, int) error { return nil }

func (Nop) Reconcile(context.Context, map[string]int64) (int64, error) { return 0, nil }

// MongoCounter stores counters on the users collection.
type MongoCounter struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *logging.Logger
}

// NewMongoCounter creates a counter over the configured users collection.
func NewMongoCounter(db *mongo.Database, c *config.Employer, logger *logging.Logger) *MongoCounter {
	return &MongoCounter{
		collection: db.Collection(c.Collection),
		timeout:    c.Timeout,
		logger:     logger,
	}
}

// userKey matches user ids stored either as ObjectIDs or as strings.
func userKey(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// Increment adds delta to jobsPosted.
func (c *MongoCounter) Increment(ctx context.Context, employerID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.collection.UpdateOne(ctx,
		bson.M{"_id": userKey(employerID)},
		bson.M{"$inc": bson.M{"jobsPosted": delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to update jobsPosted for %s: %w", employerID, err)
	}
	if result.MatchedCount == 0 {
		c.logger.Warn(ctx, "employer not found for counter update", "employer", employerID)
	}
	return nil
}

// Reconcile sets jobsPosted from counts and zeroes employers without jobs.
// It returns the number of accounts modified.
func (c *MongoCounter) Reconcile(ctx context.Context, counts map[string]int64) (int64, error) {
	var modified int64
	keys := make(bson.A, 0, len(counts))
	for id, n := range counts {
		key := userKey(id)
		keys = append(keys, key)
		result, err := c.collection.UpdateOne(ctx,
			bson.M{"_id": key, "jobsPosted": bson.M{"$ne": n}},
			bson.M{"$set": bson.M{"jobsPosted": n}},
		)
		if err != nil {
			return modified, fmt.Errorf("failed to reconcile %s: %w", id, err)
		}
		modified += result.ModifiedCount
	}

	result, err := c.collection.UpdateMany(ctx,
		bson.M{
			"role":       "employer",
			"_id":        bson.M{"$nin": keys},
			"jobsPosted": bson.M{"$nin": bson.A{0, nil}},
		},
		bson.M{"$set": bson.M{"jobsPosted": 0}},
	)
	if err != nil {
		return modified, fmt.Errorf("failed to reset idle employers: %w", err)
	}
	modified += result.ModifiedCount

	c.logger.Info(ctx, "employer counters reconciled", "employers", len(counts), "modified", modified)
	return modified, nil
}
