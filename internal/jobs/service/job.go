package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/employer"
	"github.com/skillconnect/jobcore/internal/events"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/observes"
	"go.mongodb.org/mongo-driver/bson"
)

// JobService handles the job lifecycle.
type JobService struct {
	repo       repository.JobRepository
	counter    employer.Counter
	reconciler employer.Reconciler
	views      *ViewRecorder
	events     *EventEmitter
	logger     *logging.Logger
}

// Create posts a new open job owned by the calling employer.
func (s *JobService) Create(ctx context.Context, caller structs.Caller, body *structs.CreateJobBody) (*structs.Job, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "JobService.Create")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleEmployer); err != nil {
		return nil, err
	}
	if err = validateBody(body); err != nil {
		return nil, err
	}
	if err = validateCoordinates(&body.Location); err != nil {
		return nil, err
	}

	urgency := body.Urgency
	if urgency == "" {
		urgency = structs.UrgencyMedium
	}
	title := strings.TrimSpace(body.Title)
	job := &structs.Job{
		Title:        title,
		Description:  strings.TrimSpace(body.Description),
		Slug:         slug.Make(title),
		Category:     body.Category,
		JobType:      body.JobType,
		Profession:   strings.TrimSpace(body.Profession),
		Requirements: body.Requirements,
		Skills:       body.Skills,
		Location:     toLocation(&body.Location),
		Salary:       toSalary(&body.Salary),
		Status:       structs.JobOpen,
		Urgency:      urgency,
		IsActive:     true,
		Duration:     body.Duration,
		Employer:     caller.ID,
		Applicants:   []structs.Application{},
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	if cerr := s.counter.Increment(ctx, caller.ID, 1); cerr != nil {
		s.logger.Warn(ctx, "failed to increment employer job count", "employer", caller.ID, "job_id", created.ID.Hex(), "error", cerr)
	}
	s.events.emit(ctx, events.Event{
		Type:     events.JobCreated,
		JobID:    created.ID.Hex(),
		Actor:    caller.ID,
		Employer: caller.ID,
		Status:   string(created.Status),
	})
	return created, nil
}

// Get returns a job and records a view. The returned document carries the
// view count before this view.
func (s *JobService) Get(ctx context.Context, id string) (*structs.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.views.Record(ctx, id)
	return job, nil
}

// Update edits fields of a job owned by the caller.
func (s *JobService) Update(ctx context.Context, caller structs.Caller, id string, body *structs.UpdateJobBody) (*structs.Job, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "JobService.Update")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleEmployer); err != nil {
		return nil, err
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = RequireOwner(job, caller); err != nil {
		return nil, err
	}
	if err = validateBody(body); err != nil {
		return nil, err
	}
	if err = validateCoordinates(body.Location); err != nil {
		return nil, err
	}

	if body.Status != nil && !structs.CanSetJobStatus(*body.Status, job.HiredWorker != "") {
		if *body.Status == structs.JobOpen {
			err = ecode.NewConflict("a job with a hired worker cannot be reopened")
		} else {
			err = ecode.NewConflict("a job without a hired worker cannot be in progress")
		}
		return nil, err
	}

	fields := updateFields(body)
	if len(fields) == 0 {
		err = ecode.NewValidation("no fields to update", nil)
		return nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, events.Event{
		Type:     events.JobUpdated,
		JobID:    id,
		Actor:    caller.ID,
		Employer: updated.Employer,
		Status:   string(updated.Status),
	})
	return updated, nil
}

// Delete removes a job owned by the caller together with its applications.
func (s *JobService) Delete(ctx context.Context, caller structs.Caller, id string) error {
	ctx, span := observes.Start(ctx, observes.LayerService, "JobService.Delete")
	var err error
	defer func() { observes.End(span, err) }()

	if err = RequireRole(caller, structs.RoleEmployer); err != nil {
		return err
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err = RequireOwner(job, caller); err != nil {
		return err
	}
	if err = s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if cerr := s.counter.Increment(ctx, job.Employer, -1); cerr != nil {
		s.logger.Warn(ctx, "failed to decrement employer job count", "employer", job.Employer, "job_id", id, "error", cerr)
	}
	s.events.emit(ctx, events.Event{Type: events.JobDeleted, JobID: id, Actor: caller.ID, Employer: job.Employer})
	return nil
}

// ReconcileEmployerCounts rebuilds every employer's posted-job counter from
// the jobs collection and returns the number of accounts changed.
func (s *JobService) ReconcileEmployerCounts(ctx context.Context) (int64, error) {
	counts, err := s.repo.CountByEmployer(ctx)
	if err != nil {
		return 0, err
	}
	return s.reconciler.Reconcile(ctx, counts)
}

func toLocation(b *structs.LocationBody) structs.Location {
	return structs.Location{
		Type:        structs.PointType,
		Coordinates: []float64{b.Coordinates[0], b.Coordinates[1]},
		Address:     strings.TrimSpace(b.Address),
		City:        strings.TrimSpace(b.City),
		State:       strings.TrimSpace(b.State),
		Pincode:     strings.TrimSpace(b.Pincode),
	}
}

func toSalary(b *structs.SalaryBody) structs.Salary {
	return structs.Salary{Min: b.Min, Max: b.Max, Type: b.Type}
}

// updateFields turns the non-nil parts of body into a $set document.
func updateFields(b *structs.UpdateJobBody) bson.M {
	set := bson.M{}
	if b.Title != nil {
		title := strings.TrimSpace(*b.Title)
		set["title"] = title
		set["slug"] = slug.Make(title)
	}
	if b.Description != nil {
		set["description"] = strings.TrimSpace(*b.Description)
	}
	if b.Category != nil {
		set["category"] = *b.Category
	}
	if b.JobType != nil {
		set["jobType"] = *b.JobType
	}
	if b.Profession != nil {
		set["profession"] = strings.TrimSpace(*b.Profession)
	}
	if b.Requirements != nil {
		set["requirements"] = b.Requirements
	}
	if b.Skills != nil {
		set["skills"] = b.Skills
	}
	if b.Location != nil {
		set["location"] = toLocation(b.Location)
	}
	if b.Salary != nil {
		set["salary"] = toSalary(b.Salary)
	}
	if b.Status != nil {
		set["status"] = *b.Status
	}
	if b.Urgency != nil {
		set["urgency"] = *b.Urgency
	}
	if b.IsActive != nil {
		set["isActive"] = *b.IsActive
	}
	if b.Duration != nil {
		set["duration"] = *b.Duration
	}
	return set
}
