// Package repository is the only writer of job documents. Every operation is
// scoped to a single document and maps storage failures onto ecode kinds.
package repository

import (
	"context"

	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/sanitize"
	"go.mongodb.org/mongo-driver/bson"
)

// GeoNear restricts results to a radius around a point.
type GeoNear struct {
	Lon      float64
	Lat      float64
	RadiusKm float64
}

// JobFilter holds sanitized discovery facets. Discovery queries always
// require isActive; the filter has no way to relax that.
type JobFilter struct {
	Category string
	JobType  string
	// Status restricts to one job status; empty matches any.
	Status   string
	City     string
	Employer string
	Skills   []string
	Near     *GeoNear
}

// FindOptions controls ordering and paging. A zero Sort keeps the natural
// order of the query, which is nearest-first for proximity filters.
type FindOptions struct {
	Sort  sanitize.SortKey
	Skip  int64
	Limit int64
}

// JobRepository defines the job persistence operations.
type JobRepository interface {
	FindMany(ctx context.Context, f JobFilter, opts FindOptions) ([]*structs.Job, error)
	Count(ctx context.Context, f JobFilter) (int64, error)
	FindByID(ctx context.Context, id string) (*structs.Job, error)
	FindByApplicant(ctx context.Context, workerID string) ([]*structs.Job, error)
	Create(ctx context.Context, job *structs.Job) (*structs.Job, error)
	// UpdateByID sets top-level fields. Identity, ownership, applications,
	// views and creation time are never written through it. A status is
	// only written when it agrees with the hire state at write time.
	UpdateByID(ctx context.Context, id string, fields bson.M) (*structs.Job, error)
	DeleteByID(ctx context.Context, id string) error
	// PushApplication appends app unless its worker already applied, in
	// which case it returns a conflict.
	PushApplication(ctx context.Context, jobID string, app *structs.Application) error
	// RemoveApplication deletes a non-hired application.
	RemoveApplication(ctx context.Context, jobID, appID string) error
	// SetApplicationStatus moves an application from one status to another in
	// a single update guarded on from. Hiring also records worker as the
	// job's hired worker and marks the job in progress, and only succeeds
	// when no other worker is hired.
	SetApplicationStatus(ctx context.Context, jobID, appID string, from, to structs.ApplicationStatus, worker string) (*structs.Job, error)
	IncrementViews(ctx context.Context, id string) error
	CountByEmployer(ctx context.Context) (map[string]int64, error)
	EnsureIndexes(ctx context.Context) error
}

// protectedFields can not be changed by UpdateByID.
var protectedFields = []string{"_id", "employer", "applicants", "hiredWorker", "views", "createdAt", "updatedAt"}

func stripProtected(fields bson.M) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range protectedFields {
		delete(out, k)
	}
	return out
}

// jobStatusOf reads the status being written by an update, if any.
func jobStatusOf(fields bson.M) (structs.JobStatus, bool) {
	switch v := fields["status"].(type) {
	case structs.JobStatus:
		return v, true
	case string:
		return structs.JobStatus(v), true
	}
	return "", false
}

// hireGuard constrains hiredWorker so that an open job has no hired worker
// and an in-progress job has one. It returns nil when status is unconstrained.
func hireGuard(status structs.JobStatus) bson.M {
	switch status {
	case structs.JobOpen:
		return bson.M{"$in": bson.A{nil, ""}}
	case structs.JobInProgress:
		return bson.M{"$nin": bson.A{nil, ""}}
	}
	return nil
}
