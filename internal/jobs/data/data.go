// Package data manages the job store connection.
package data

import (
	"context"
	"fmt"

	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/logging"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client *mongo.Client
	db     *mongo.Database
	Jobs   repository.JobRepository
}

// New opens the configured job store. The memory driver needs no server and
// leaves DB nil.
func New(ctx context.Context, c *config.Data, logger *logging.Logger) (*Data, error) {
	if c.Driver == config.DriverMemory {
		logger.Warn(ctx, "using in-memory job store, data is not persisted")
		return &Data{Jobs: repository.NewMemoryJobRepository()}, nil
	}
	if c.Driver != config.DriverMongoDB {
		return nil, fmt.Errorf("unknown data driver %q", c.Driver)
	}

	ctx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(c.MongoDB.URI).
		SetTimeout(c.QueryTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "Connected to MongoDB successfully", "database", c.MongoDB.Database)

	db := client.Database(c.MongoDB.Database)
	return &Data{
		client: client,
		db:     db,
		Jobs:   repository.NewJobRepository(db, c.QueryTimeout, logger),
	}, nil
}

// Close closes the MongoDB connection.
func (d *Data) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

// DB returns the MongoDB database instance, nil for the memory driver.
func (d *Data) DB() *mongo.Database {
	return d.db
}

// Ping checks the store is reachable.
func (d *Data) Ping(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Ping(ctx, readpref.Primary())
}
