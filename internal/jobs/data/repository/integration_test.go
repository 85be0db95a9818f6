package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRepo connects to JOBCORE_TEST_MONGODB_URI and returns a repository on
// a throwaway database. The test is skipped when the variable is unset.
func mongoRepo(t *testing.T) JobRepository {
	t.Helper()
	uri := os.Getenv("JOBCORE_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("JOBCORE_TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("jobcore_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	repo := NewJobRepository(db, 5*time.Second, logging.Discard())
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	return repo
}

func seedJob(employer string, lon, lat float64) *structs.Job {
	return &structs.Job{
		Title:    "Fix kitchen sink",
		Category: structs.CategoryPlumbing,
		JobType:  structs.JobTypeTemporary,
		Skills:   []string{"Pipe Fitting"},
		Location: structs.Location{Type: structs.PointType, Coordinates: []float64{lon, lat}, City: "Bengaluru"},
		Salary:   structs.Salary{Min: 500, Max: 800, Type: structs.PayDaily},
		Status:   structs.JobOpen,
		Urgency:  structs.UrgencyMedium,
		IsActive: true,
		Employer: employer,
	}
}

func TestMongoApplicationLifecycle(t *testing.T) {
	repo := mongoRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, seedJob("e1", 77.59, 12.97))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := job.ID.Hex()

	app := &structs.Application{Worker: "w1", Status: structs.StatusPending, AppliedAt: time.Now().UTC()}
	if err := repo.PushApplication(ctx, id, app); err != nil {
		t.Fatalf("PushApplication() error = %v", err)
	}
	dup := &structs.Application{Worker: "w1", Status: structs.StatusPending, AppliedAt: time.Now().UTC()}
	if err := repo.PushApplication(ctx, id, dup); !errors.Is(err, ecode.ErrConflict) {
		t.Fatalf("duplicate PushApplication() error = %v, want conflict", err)
	}

	hired, err := repo.SetApplicationStatus(ctx, id, app.ID.Hex(), structs.StatusPending, structs.StatusHired, "w1")
	if err != nil {
		t.Fatalf("SetApplicationStatus() error = %v", err)
	}
	if hired.HiredWorker != "w1" || hired.Status != structs.JobInProgress {
		t.Errorf("after hire: hiredWorker=%q status=%q", hired.HiredWorker, hired.Status)
	}

	if err := repo.RemoveApplication(ctx, id, app.ID.Hex()); !errors.Is(err, ecode.ErrConflict) {
		t.Errorf("RemoveApplication(hired) error = %v, want conflict", err)
	}
	if _, err := repo.SetApplicationStatus(ctx, id, app.ID.Hex(), structs.StatusPending, structs.StatusRejected, "w1"); !errors.Is(err, ecode.ErrConflict) {
		t.Errorf("stale transition error = %v, want conflict", err)
	}
}

func TestMongoDiscoveryAndViews(t *testing.T) {
	repo := mongoRepo(t)
	ctx := context.Background()

	near, _ := repo.Create(ctx, seedJob("e1", 77.59, 12.97))
	if _, err := repo.Create(ctx, seedJob("e1", 72.87, 19.07)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	hidden := seedJob("e2", 77.59, 12.97)
	hidden.IsActive = false
	if _, err := repo.Create(ctx, hidden); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f := JobFilter{Status: "open", Near: &GeoNear{Lon: 77.6, Lat: 12.97, RadiusKm: 50}}
	jobs, err := repo.FindMany(ctx, f, FindOptions{Limit: 12})
	if err != nil {
		t.Fatalf("FindMany() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != near.ID {
		t.Errorf("FindMany() = %d jobs, want only the nearby active one", len(jobs))
	}
	if n, err := repo.Count(ctx, f); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}

	if err := repo.IncrementViews(ctx, near.ID.Hex()); err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}
	got, _ := repo.FindByID(ctx, near.ID.Hex())
	if got.Views != 1 {
		t.Errorf("Views = %d, want 1", got.Views)
	}

	updated, err := repo.UpdateByID(ctx, near.ID.Hex(), bson.M{"title": "Replace sink", "employer": "evil"})
	if err != nil {
		t.Fatalf("UpdateByID() error = %v", err)
	}
	if updated.Title != "Replace sink" || updated.Employer != "e1" {
		t.Errorf("UpdateByID() title=%q employer=%q", updated.Title, updated.Employer)
	}

	counts, err := repo.CountByEmployer(ctx)
	if err != nil || counts["e1"] != 2 || counts["e2"] != 1 {
		t.Errorf("CountByEmployer() = %v, %v", counts, err)
	}

	if _, err := repo.FindByID(ctx, "not-an-id"); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("FindByID(malformed) error = %v, want not found", err)
	}
}

func TestMongoStatusFollowsHire(t *testing.T) {
	checkStatusFollowsHire(t, mongoRepo(t))
}
