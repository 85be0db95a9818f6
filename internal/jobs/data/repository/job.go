package repository

import (
	"context"
	"errors"
	"time"

	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/observes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

// JobCollection is the collection job documents live in.
const JobCollection = "jobs"

type jobRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *logging.Logger
}

// NewJobRepository creates a MongoDB backed job repository. Each call runs
// under timeout.
func NewJobRepository(db *mongo.Database, timeout time.Duration, logger *logging.Logger) JobRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &jobRepository{
		collection: db.Collection(JobCollection),
		timeout:    timeout,
		logger:     logger,
	}
}

// begin applies the per-call timeout and opens a span. The returned func
// must be called with the operation's final error.
func (r *jobRepository) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := observes.Start(ctx, observes.LayerRepo, "JobRepository."+name, attrs...)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return ctx, func(err error) {
		cancel()
		observes.End(span, err)
	}
}

// EnsureIndexes creates the indexes discovery and applications rely on.
func (r *jobRepository) EnsureIndexes(ctx context.Context) (err error) {
	ctx, done := r.begin(ctx, "EnsureIndexes")
	defer func() { done(err) }()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "employer", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "jobType", Value: 1}}},
		{Keys: bson.D{{Key: "applicants.worker", Value: 1}}},
		{Keys: bson.D{{Key: "skills", Value: 1}}},
	}
	names, err := r.collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		return mapError(err, "create indexes", errJobNotFound)
	}
	r.logger.Info(ctx, "job indexes ensured", "indexes", names)
	return nil
}

// FindMany retrieves active jobs matching f.
func (r *jobRepository) FindMany(ctx context.Context, f JobFilter, opts FindOptions) (jobs []*structs.Job, err error) {
	ctx, done := r.begin(ctx, "FindMany")
	defer func() { done(err) }()

	findOpts := options.Find().SetSkip(opts.Skip)
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if sort := SortDoc(opts.Sort); sort != nil {
		findOpts.SetSort(sort)
	}

	cursor, err := r.collection.Find(ctx, FindFilter(f), findOpts)
	if err != nil {
		r.logger.Error(ctx, "failed to list jobs", "error", err)
		return nil, mapError(err, "list jobs", errJobNotFound)
	}
	defer cursor.Close(ctx)

	jobs = []*structs.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		r.logger.Error(ctx, "failed to decode jobs", "error", err)
		return nil, mapError(err, "decode jobs", errJobNotFound)
	}
	return jobs, nil
}

// Count counts active jobs matching f.
func (r *jobRepository) Count(ctx context.Context, f JobFilter) (n int64, err error) {
	ctx, done := r.begin(ctx, "Count")
	defer func() { done(err) }()

	n, err = r.collection.CountDocuments(ctx, CountFilter(f))
	if err != nil {
		r.logger.Error(ctx, "failed to count jobs", "error", err)
		return 0, mapError(err, "count jobs", errJobNotFound)
	}
	return n, nil
}

// FindByID retrieves a job by ID.
func (r *jobRepository) FindByID(ctx context.Context, id string) (job *structs.Job, err error) {
	ctx, done := r.begin(ctx, "FindByID", attribute.String("job.id", id))
	defer func() { done(err) }()

	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return nil, err
	}
	return r.findByOID(ctx, oid)
}

func (r *jobRepository) findByOID(ctx context.Context, oid primitive.ObjectID) (*structs.Job, error) {
	var job structs.Job
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&job); err != nil {
		return nil, mapError(err, "find job", errJobNotFound)
	}
	return &job, nil
}

// FindByApplicant retrieves the jobs a worker applied to, newest first.
func (r *jobRepository) FindByApplicant(ctx context.Context, workerID string) (jobs []*structs.Job, err error) {
	ctx, done := r.begin(ctx, "FindByApplicant")
	defer func() { done(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"applicants.worker": workerID}, opts)
	if err != nil {
		r.logger.Error(ctx, "failed to list applied jobs", "worker", workerID, "error", err)
		return nil, mapError(err, "list applied jobs", errJobNotFound)
	}
	defer cursor.Close(ctx)

	jobs = []*structs.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, mapError(err, "decode applied jobs", errJobNotFound)
	}
	return jobs, nil
}

// Create inserts a new job.
func (r *jobRepository) Create(ctx context.Context, job *structs.Job) (created *structs.Job, err error) {
	ctx, done := r.begin(ctx, "Create")
	defer func() { done(err) }()

	now := time.Now().UTC()
	job.ID = primitive.NewObjectID()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Applicants == nil {
		job.Applicants = []structs.Application{}
	}

	if _, err := r.collection.InsertOne(ctx, job); err != nil {
		r.logger.Error(ctx, "failed to create job", "error", err)
		return nil, mapError(err, "create job", errJobNotFound)
	}

	r.logger.Info(ctx, "job created", "id", job.ID.Hex(), "employer", job.Employer)
	return job, nil
}

// UpdateByID sets fields on a job and returns the updated document.
func (r *jobRepository) UpdateByID(ctx context.Context, id string, fields bson.M) (job *structs.Job, err error) {
	ctx, done := r.begin(ctx, "UpdateByID", attribute.String("job.id", id))
	defer func() { done(err) }()

	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return nil, err
	}
	set := stripProtected(fields)
	set["updatedAt"] = time.Now().UTC()

	filter := bson.M{"_id": oid}
	status, hasStatus := jobStatusOf(set)
	if guard := hireGuard(status); hasStatus && guard != nil {
		filter["hiredWorker"] = guard
	}

	var updated structs.Job
	err = r.collection.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) && len(filter) > 1 {
		current, ferr := r.findByOID(ctx, oid)
		if ferr != nil {
			return nil, ferr
		}
		return nil, hireStateMiss(current, status)
	}
	if err != nil {
		return nil, mapError(err, "update job", errJobNotFound)
	}

	r.logger.Info(ctx, "job updated", "id", id)
	return &updated, nil
}

// DeleteByID deletes a job by ID.
func (r *jobRepository) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, done := r.begin(ctx, "DeleteByID", attribute.String("job.id", id))
	defer func() { done(err) }()

	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error(ctx, "failed to delete job", "id", id, "error", err)
		return mapError(err, "delete job", errJobNotFound)
	}
	if result.DeletedCount == 0 {
		return errJobNotFound
	}

	r.logger.Info(ctx, "job deleted", "id", id)
	return nil
}

// PushApplication appends app, guarded on the worker not having applied.
func (r *jobRepository) PushApplication(ctx context.Context, jobID string, app *structs.Application) (err error) {
	ctx, done := r.begin(ctx, "PushApplication", attribute.String("job.id", jobID))
	defer func() { done(err) }()

	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return err
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "applicants.worker": bson.M{"$ne": app.Worker}},
		bson.M{
			"$push": bson.M{"applicants": app},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return mapError(err, "add application", errJobNotFound)
	}
	if result.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return mapError(err, "add application", errJobNotFound)
		}
		if n == 0 {
			return errJobNotFound
		}
		return errAlreadyApplied
	}
	return nil
}

// RemoveApplication pulls a non-hired application.
func (r *jobRepository) RemoveApplication(ctx context.Context, jobID, appID string) (err error) {
	ctx, done := r.begin(ctx, "RemoveApplication", attribute.String("job.id", jobID))
	defer func() { done(err) }()

	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return err
	}
	aid, err := parseID(appID, errApplicationNotFound)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id": oid,
			"applicants": bson.M{"$elemMatch": bson.M{
				"_id":    aid,
				"status": bson.M{"$ne": structs.StatusHired},
			}},
		},
		bson.M{
			"$pull": bson.M{"applicants": bson.M{"_id": aid}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return mapError(err, "remove application", errJobNotFound)
	}
	if result.MatchedCount == 0 {
		job, err := r.findByOID(ctx, oid)
		if err != nil {
			return err
		}
		return removeMiss(job, aid)
	}
	return nil
}

// SetApplicationStatus performs a guarded status transition.
func (r *jobRepository) SetApplicationStatus(ctx context.Context, jobID, appID string, from, to structs.ApplicationStatus, worker string) (job *structs.Job, err error) {
	ctx, done := r.begin(ctx, "SetApplicationStatus",
		attribute.String("job.id", jobID),
		attribute.String("application.status", string(to)),
	)
	defer func() { done(err) }()

	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(appID, errApplicationNotFound)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":        oid,
		"applicants": bson.M{"$elemMatch": bson.M{"_id": aid, "status": from}},
	}
	set := bson.M{
		"applicants.$[app].status": to,
		"updatedAt":                time.Now().UTC(),
	}
	if to == structs.StatusHired {
		// Missing or null hiredWorker, or this worker for an idempotent re-hire.
		filter["hiredWorker"] = bson.M{"$in": bson.A{nil, "", worker}}
		set["hiredWorker"] = worker
		set["status"] = structs.JobInProgress
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"app._id": aid}}})

	var updated structs.Job
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		r.logger.Info(ctx, "application status changed", "job_id", jobID, "application_id", appID, "from", from, "to", to)
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapError(err, "update application status", errJobNotFound)
	}

	return nil, r.explainStatusMiss(ctx, oid, aid, from, to, worker)
}

// explainStatusMiss reports why a guarded status update matched nothing.
func (r *jobRepository) explainStatusMiss(ctx context.Context, oid, aid primitive.ObjectID, from, to structs.ApplicationStatus, worker string) error {
	job, err := r.findByOID(ctx, oid)
	if err != nil {
		return err
	}
	return statusMiss(job, aid, from, to, worker)
}

// IncrementViews atomically adds one view.
func (r *jobRepository) IncrementViews(ctx context.Context, id string) (err error) {
	ctx, done := r.begin(ctx, "IncrementViews", attribute.String("job.id", id))
	defer func() { done(err) }()

	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return err
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return mapError(err, "increment views", errJobNotFound)
	}
	if result.MatchedCount == 0 {
		return errJobNotFound
	}
	return nil
}

// CountByEmployer returns the number of jobs per employer.
func (r *jobRepository) CountByEmployer(ctx context.Context) (counts map[string]int64, err error) {
	ctx, done := r.begin(ctx, "CountByEmployer")
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$employer"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapError(err, "count jobs by employer", errJobNotFound)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Employer string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, mapError(err, "decode employer counts", errJobNotFound)
	}

	counts = make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Employer] = row.Count
	}
	return counts, nil
}
