package server

import (
	"context"
	"testing"
	"time"

	"github.com/survaize/survaize/internal/convert"
	"github.com/survaize/survaize/internal/jobs"
	"github.com/survaize/survaize/internal/reader"
	"github.com/survaize/survaize/internal/svcctx"
	"github.com/survaize/survaize/internal/writer"
)

func testServices() *svcctx.Services {
	return &svcctx.Services{
		Converter: convert.New(
			reader.NewFactory(map[string]reader.Reader{"json": reader.NewJSONReader()}),
			writer.NewFactory(map[string]writer.Writer{"json": writer.NewJSONWriter(nil)}),
			nil,
		),
		Jobs: jobs.NewRegistry(nil),
	}
}

func TestNewRequiresServices(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without services")
	}
	if _, err := New(Config{Services: &svcctx.Services{}}); err == nil {
		t.Fatal("expected error without converter and jobs")
	}
}

func TestStartStop(t *testing.T) {
	srv, err := New(Config{Port: 18462, Services: testServices()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	// Give the listener a moment, then trigger graceful shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Fatal("server still marked running")
	}
}
