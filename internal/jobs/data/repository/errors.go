package repository

import (
	"context"
	"errors"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

var (
	errJobNotFound         = ecode.NewNotFound(ecode.NotExist("job"))
	errApplicationNotFound = ecode.NewNotFound(ecode.NotExist("application"))
	errAlreadyApplied      = ecode.NewConflict("worker has already applied to this job")
	errHiredApplication    = ecode.NewConflict("a hired application cannot be changed")
	errStatusChanged       = ecode.NewConflict("application status changed concurrently")
	errAlreadyHired        = ecode.NewConflict("another worker is already hired for this job")
	errReopenHired         = ecode.NewConflict("a job with a hired worker cannot be reopened")
	errNoHiredWorker       = ecode.NewConflict("a job without a hired worker cannot be in progress")
)

// parseID converts a hex id; malformed ids are reported as missing.
func parseID(id string, missing error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, missing
	}
	return oid, nil
}

// isTransient reports timeout and connectivity failures.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var sse topology.ServerSelectionError
	return errors.As(err, &sse)
}

// mapError translates a driver error for op.
func mapError(err error, op string, missing error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return missing
	case isTransient(err):
		return ecode.NewTransient("job store unavailable during "+op, err)
	default:
		var e *ecode.Error
		if errors.As(err, &e) {
			return err
		}
		return ecode.NewInternal("failed to "+op, err)
	}
}

// statusMiss explains why a status transition guarded on from could not be
// applied to job.
func statusMiss(job *structs.Job, aid primitive.ObjectID, from, to structs.ApplicationStatus, worker string) error {
	app, ok := job.FindApplication(aid)
	switch {
	case !ok:
		return errApplicationNotFound
	case app.Status != from && app.Status == structs.StatusHired:
		return errHiredApplication
	case app.Status != from:
		return errStatusChanged
	case to == structs.StatusHired && job.HiredWorker != "" && job.HiredWorker != worker:
		return errAlreadyHired
	}
	return errStatusChanged
}

// removeMiss explains why an application could not be removed from job.
func removeMiss(job *structs.Job, aid primitive.ObjectID) error {
	app, ok := job.FindApplication(aid)
	if !ok {
		return errApplicationNotFound
	}
	if app.Status == structs.StatusHired {
		return errHiredApplication
	}
	return errStatusChanged
}

// hireStateMiss explains why status could not be written to job.
func hireStateMiss(job *structs.Job, status structs.JobStatus) error {
	if structs.CanSetJobStatus(status, job.HiredWorker != "") {
		return ecode.NewConflict("job changed concurrently")
	}
	if status == structs.JobOpen {
		return errReopenHired
	}
	return errNoHiredWorker
}
