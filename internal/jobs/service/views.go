package service

import (
	"context"
	"sync"
	"time"

	"github.com/skillconnect/jobcore/internal/ctxutil"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/logging"
)

// ViewRecorder counts job detail views off the request path.
type ViewRecorder struct {
	repo    repository.JobRepository
	timeout time.Duration
	logger  *logging.Logger
	wg      sync.WaitGroup
}

// NewViewRecorder creates a recorder whose increments run under timeout.
func NewViewRecorder(repo repository.JobRepository, timeout time.Duration, logger *logging.Logger) *ViewRecorder {
	return &ViewRecorder{repo: repo, timeout: timeout, logger: logger}
}

// Record increments the view counter of jobID in the background. Failures
// are logged and dropped.
func (v *ViewRecorder) Record(ctx context.Context, jobID string) {
	ctx, cancel := ctxutil.WithAsyncContext(ctx, v.timeout)
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()
		if err := v.repo.IncrementViews(ctx, jobID); err != nil {
			v.logger.Warn(ctx, "failed to record job view", "job_id", jobID, "error", err)
		}
	}()
}

// Wait blocks until in-flight increments finish or ctx is done.
func (v *ViewRecorder) Wait(ctx context.Context) error {
	return waitGroup(ctx, &v.wg)
}
