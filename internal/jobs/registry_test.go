package jobs

import (
	"errors"
	"testing"

	"github.com/survaize/survaize/internal/model"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(nil)
	job := r.Create()
	if job.ID == "" {
		t.Fatal("job should have an id")
	}
	if job.Status() != StatusRunning {
		t.Fatalf("status = %s", job.Status())
	}

	got, err := r.Get(job.ID)
	if err != nil || got != job {
		t.Fatalf("get: %v %v", got, err)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for unknown job")
	}

	r.Remove(job.ID)
	if r.Len() != 0 {
		t.Fatalf("len = %d after remove", r.Len())
	}
}

func TestJobEventDelivery(t *testing.T) {
	job := NewRegistry(nil).Create()

	job.Publish(Event{Type: "progress", Percent: 0, Message: "Examining page 1/2"})
	job.Publish(Event{Type: "progress", Percent: 50, Message: "Examining page 2/2"})
	job.Complete(&model.Questionnaire{Title: "Done"})

	var events []Event
	for e := range job.Events() {
		events = append(events, e)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 progress events, got %d", len(events))
	}
	if events[1].Percent != 50 {
		t.Fatalf("second event: %+v", events[1])
	}

	q, err := job.Result()
	if err != nil || q == nil || q.Title != "Done" {
		t.Fatalf("result: %v %v", q, err)
	}
	if job.Status() != StatusCompleted {
		t.Fatalf("status = %s", job.Status())
	}
}

func TestJobFailure(t *testing.T) {
	job := NewRegistry(nil).Create()
	job.Fail(errors.New("model refused"))

	for range job.Events() {
		t.Fatal("no events expected")
	}
	q, err := job.Result()
	if q != nil || err == nil {
		t.Fatalf("result: %v %v", q, err)
	}
	if job.Status() != StatusFailed {
		t.Fatalf("status = %s", job.Status())
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	job := NewRegistry(nil).Create()
	// Overfill the buffer with no consumer attached.
	for i := 0; i < eventBuffer*2; i++ {
		job.Publish(Event{Type: "progress", Percent: i})
	}
	job.Complete(&model.Questionnaire{Title: "T"})

	count := 0
	for range job.Events() {
		count++
	}
	if count != eventBuffer {
		t.Fatalf("expected %d buffered events, got %d", eventBuffer, count)
	}

	// Publishing after completion is a no-op rather than a panic.
	job.Publish(Event{Type: "progress", Percent: 99})
}
