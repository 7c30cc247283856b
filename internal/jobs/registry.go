// Package jobs tracks long-running interpretation jobs for the web API. Each
// job owns a buffered event channel: progress events are published
// best-effort, the terminal result is stored on the job, and the closed
// channel is the consumer's signal to read it.
package jobs

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/survaize/survaize/internal/model"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event is one update delivered to a job's consumer.
type Event struct {
	Type    string `json:"type"` // "progress", "questionnaire" or "error"
	Percent int    `json:"percent,omitempty"`
	Message string `json:"message,omitempty"`

	Questionnaire *model.Questionnaire `json:"questionnaire,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// eventBuffer bounds how far a producer can run ahead of a slow consumer
// before progress events start being dropped.
const eventBuffer = 64

// Job is a single tracked interpretation run.
type Job struct {
	ID        string
	CreatedAt time.Time

	events chan Event

	mu     sync.Mutex
	status Status
	result *model.Questionnaire
	err    error
	closed bool
}

// Events returns the job's event stream. The channel is closed once the job
// reaches a terminal state; after that Result holds the outcome.
func (j *Job) Events() <-chan Event { return j.events }

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Result returns the terminal outcome. Both values are zero until the event
// channel has been closed.
func (j *Job) Result() (*model.Questionnaire, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Publish delivers a progress event without blocking. Events published to a
// full buffer or a finished job are dropped; the terminal result never
// travels this path, so dropping is safe.
func (j *Job) Publish(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.events <- event:
	default:
	}
}

// Complete records a successful result and closes the event stream.
func (j *Job) Complete(q *model.Questionnaire) {
	j.finish(StatusCompleted, q, nil)
}

// Fail records a terminal error and closes the event stream.
func (j *Job) Fail(err error) {
	j.finish(StatusFailed, nil, err)
}

func (j *Job) finish(status Status, q *model.Questionnaire, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.status = status
	j.result = q
	j.err = err
	j.closed = true
	close(j.events)
}

// Registry holds active jobs. It is injected into the handlers that need it
// rather than kept as package state.
type Registry struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	logger *slog.Logger
}

// NewRegistry creates an empty job registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{jobs: make(map[string]*Job), logger: logger}
}

// Create registers a new running job and returns it.
func (r *Registry) Create() *Job {
	job := &Job{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		events:    make(chan Event, eventBuffer),
		status:    StatusRunning,
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	r.logger.Info("job created", "job_id", job.ID)
	return job
}

// Get looks up a job by id.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return job, nil
}

// Remove drops a job from the registry. Callers remove a job once its
// terminal result has been delivered.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.jobs, id)
	r.mu.Unlock()
}

// Len reports how many jobs are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
