// Package service implements job discovery, the job lifecycle and the
// application state machine on top of the job repository.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/skillconnect/jobcore/internal/ctxutil"
	"github.com/skillconnect/jobcore/internal/employer"
	"github.com/skillconnect/jobcore/internal/events"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/logging"
)

// Options wires the service collaborators. Nil collaborators fall back to
// no-op implementations.
type Options struct {
	Jobs         repository.JobRepository
	Counter      employer.Counter
	Reconciler   employer.Reconciler
	Events       events.Publisher
	Logger       *logging.Logger
	ViewTimeout  time.Duration
	EventTimeout time.Duration
}

// Service aggregates the job sub-services.
type Service struct {
	Job         *JobService
	Application *ApplicationService
	Discovery   *Discovery
	Views       *ViewRecorder
	Events      *EventEmitter
}

// New creates the service layer.
func New(o Options) *Service {
	if o.Logger == nil {
		o.Logger = logging.StdLogger()
	}
	if o.Counter == nil {
		o.Counter = employer.Nop{}
	}
	if o.Reconciler == nil {
		o.Reconciler = employer.Nop{}
	}
	if o.Events == nil {
		o.Events = events.Nop{}
	}

	em := &EventEmitter{pub: o.Events, timeout: o.EventTimeout, logger: o.Logger}
	views := NewViewRecorder(o.Jobs, o.ViewTimeout, o.Logger)

	return &Service{
		Job: &JobService{
			repo:       o.Jobs,
			counter:    o.Counter,
			reconciler: o.Reconciler,
			views:      views,
			events:     em,
			logger:     o.Logger,
		},
		Application: &ApplicationService{repo: o.Jobs, events: em, logger: o.Logger},
		Discovery:   &Discovery{repo: o.Jobs},
		Views:       views,
		Events:      em,
	}
}

// EventEmitter publishes lifecycle events best effort, off the request path.
type EventEmitter struct {
	pub     events.Publisher
	timeout time.Duration
	logger  *logging.Logger
	wg      sync.WaitGroup
}

func (e *EventEmitter) emit(ctx context.Context, ev events.Event) {
	ev.TraceID = ctxutil.GetTraceID(ctx)
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := ctxutil.WithAsyncContext(ctx, e.timeout)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.logger.Warn(ctx, "failed to publish event", "type", ev.Type, "job_id", ev.JobID, "error", err)
		}
	}()
}

// Wait blocks until in-flight publishes finish or ctx is done.
func (e *EventEmitter) Wait(ctx context.Context) error {
	return waitGroup(ctx, &e.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
