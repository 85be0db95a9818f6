package service

import (
	"context"
	"sort"
	"time"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/events"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/observes"
	"github.com/skillconnect/jobcore/internal/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationService drives the application state machine.
type ApplicationService struct {
	repo   repository.JobRepository
	events *EventEmitter
	logger *logging.Logger
}

// Apply submits the calling worker's application to a job.
func (s *ApplicationService) Apply(ctx context.Context, caller structs.Caller, jobID, coverLetter string) (*structs.Application, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "ApplicationService.Apply")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleWorker); err != nil {
		return nil, err
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, ok := job.FindApplicant(caller.ID); ok {
		err = ecode.NewConflict("already applied to this job")
		return nil, err
	}

	app := &structs.Application{
		ID:          primitive.NewObjectID(),
		Worker:      caller.ID,
		CoverLetter: sanitize.Text(coverLetter, sanitize.MaxTextLen),
		Status:      structs.StatusPending,
		AppliedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if err = s.repo.PushApplication(ctx, jobID, app); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "application submitted", "job_id", jobID, "application_id", app.ID.Hex(), "worker", caller.ID)
	s.events.emit(ctx, events.Event{
		Type:          events.ApplicationSubmitted,
		JobID:         jobID,
		ApplicationID: app.ID.Hex(),
		Actor:         caller.ID,
		Employer:      job.Employer,
		Worker:        caller.ID,
		Status:        string(app.Status),
	})
	return app, nil
}

// ListForJob returns the applications of a job owned by the caller.
func (s *ApplicationService) ListForJob(ctx context.Context, caller structs.Caller, jobID string) ([]structs.Application, error) {
	if err := RequireRole(caller, structs.RoleEmployer); err != nil {
		return nil, err
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(job, caller); err != nil {
		return nil, err
	}
	if job.Applicants == nil {
		return []structs.Application{}, nil
	}
	return job.Applicants, nil
}

// ListMine returns the calling worker's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, caller structs.Caller) ([]structs.MyApplication, error) {
	if err := RequireRole(caller, structs.RoleWorker); err != nil {
		return nil, err
	}
	jobs, err := s.repo.FindByApplicant(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	out := make([]structs.MyApplication, 0, len(jobs))
	for _, job := range jobs {
		app, ok := job.FindApplicant(caller.ID)
		if !ok {
			continue
		}
		out = append(out, structs.MyApplication{
			ID: app.ID,
			Job: structs.JobSummary{
				ID:       job.ID,
				Title:    job.Title,
				Category: job.Category,
				Location: job.Location,
				Salary:   job.Salary,
				Employer: job.Employer,
				Views:    job.Views,
				Status:   job.Status,
			},
			Status:      app.Status,
			AppliedAt:   app.AppliedAt,
			CoverLetter: app.CoverLetter,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppliedAt.After(out[j].AppliedAt)
	})
	return out, nil
}

// SetStatus moves an application of a job owned by the caller to status.
// Hiring also marks the job in progress and records the hired worker in the
// same write.
func (s *ApplicationService) SetStatus(ctx context.Context, caller structs.Caller, jobID, appID string, status structs.ApplicationStatus) (*structs.Application, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "ApplicationService.SetStatus")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleEmployer); err != nil {
		return nil, err
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err = RequireOwner(job, caller); err != nil {
		return nil, err
	}
	app, err := findApplication(job, appID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		err = ecode.NewValidation("invalid application status", map[string]string{
			"status": "status must be one of: pending shortlisted hired rejected",
		})
		return nil, err
	}
	if !structs.CanTransition(app.Status, status) {
		err = ecode.NewConflict("cannot move application from " + string(app.Status) + " to " + string(status))
		return nil, err
	}

	from := app.Status
	updated, err := s.repo.SetApplicationStatus(ctx, jobID, appID, from, status, app.Worker)
	if err != nil {
		return nil, err
	}
	result, err := findApplication(updated, appID)
	if err != nil {
		return nil, err
	}

	if from != status {
		s.logger.Info(ctx, "application status changed", "job_id", jobID, "application_id", appID, "from", from, "to", status)
		s.events.emit(ctx, events.Event{
			Type:          events.ApplicationStatusChanged,
			JobID:         jobID,
			ApplicationID: appID,
			Actor:         caller.ID,
			Employer:      job.Employer,
			Worker:        app.Worker,
			Status:        string(status),
		})
	}
	return result, nil
}

// Withdraw removes the caller's own application unless it was hired.
func (s *ApplicationService) Withdraw(ctx context.Context, caller structs.Caller, jobID, appID string) error {
	ctx, span := observes.Start(ctx, observes.LayerService, "ApplicationService.Withdraw")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleWorker); err != nil {
		return err
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	app, err := findApplication(job, appID)
	if err != nil {
		return err
	}
	if app.Worker != caller.ID {
		err = ecode.NewForbidden("not authorized to withdraw this application")
		return err
	}
	if !structs.CanWithdraw(app.Status) {
		err = ecode.NewConflict("cannot withdraw a hired application")
		return err
	}
	if err = s.repo.RemoveApplication(ctx, jobID, appID); err != nil {
		return err
	}

	s.events.emit(ctx, events.Event{
		Type:          events.ApplicationWithdrawn,
		JobID:         jobID,
		ApplicationID: appID,
		Actor:         caller.ID,
		Employer:      job.Employer,
		Worker:        caller.ID,
	})
	return nil
}

func findApplication(job *structs.Job, appID string) (*structs.Application, error) {
	oid, err := primitive.ObjectIDFromHex(appID)
	if err != nil {
		return nil, ecode.NewNotFound(ecode.NotExist("application"))
	}
	app, ok := job.FindApplication(oid)
	if !ok {
		return nil, ecode.NewNotFound(ecode.NotExist("application"))
	}
	return app, nil
}
