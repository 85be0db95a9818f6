// Package events publishes job lifecycle notifications for downstream
// consumers. Publishing is best effort and never blocks the core operation
// beyond the publish timeout.
package events

import (
	"context"
	"sync"
	"time"
)

// Routing keys.
const (
	JobCreated               = "job.created"
	JobUpdated               = "job.updated"
	JobDeleted               = "job.deleted"
	ApplicationSubmitted     = "application.submitted"
	ApplicationStatusChanged = "application.status_changed"
	ApplicationWithdrawn     = "application.withdrawn"
)

// Event is a lifecycle notification.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	JobID         string    `json:"jobId"`
	ApplicationID string    `json:"applicationId,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	Employer      string    `json:"employer,omitempty"`
	Worker        string    `json:"worker,omitempty"`
	Status        string    `json:"status,omitempty"`
	TraceID       string    `json:"traceId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
