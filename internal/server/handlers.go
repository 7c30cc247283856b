package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/survaize/survaize/internal/jobs"
	"github.com/survaize/survaize/internal/svcctx"
)

// maxUploadBytes bounds questionnaire uploads; scanned PDFs run large.
const maxUploadBytes = 100 << 20

// FormatsResponse lists the readable and writable formats.
type FormatsResponse struct {
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

// handleFormats lists supported input and output formats.
//
//	@Summary		List supported formats
//	@Produce		json
//	@Success		200	{object}	FormatsResponse
//	@Router			/api/formats [get]
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	converter := svcctx.ConverterFrom(r.Context())
	writeJSON(w, http.StatusOK, FormatsResponse{
		Input:  converter.InputFormats(),
		Output: converter.OutputFormats(),
	})
}

// ReadResponse returns the id of a started interpretation job.
type ReadResponse struct {
	JobID string `json:"job_id"`
}

// handleRead accepts a questionnaire upload and starts an interpretation job.
// The client follows up on /api/questionnaire/read/{job_id} for progress.
//
//	@Summary		Upload a questionnaire for interpretation
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"questionnaire file"
//	@Success		202	{object}	ReadResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/questionnaire/read [post]
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	converter := svcctx.ConverterFrom(r.Context())
	registry := svcctx.JobsFrom(r.Context())
	rec := svcctx.MetricsFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing file upload: %v", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	supported := false
	for _, format := range converter.InputFormats() {
		if ext == format {
			supported = true
			break
		}
	}
	if !supported {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported input format: %s (supported: %s)",
			ext, strings.Join(converter.InputFormats(), ", ")))
		return
	}

	uploadDir := s.uploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	inputPath := filepath.Join(uploadDir, uuid.NewString()+"."+ext)
	dst, err := os.Create(inputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("store upload: %v", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(inputPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("store upload: %v", err))
		return
	}
	dst.Close()

	job := registry.Create()
	rec.JobStarted()
	s.logger.Info("interpretation job started", "job_id", job.ID, "file", header.Filename)

	// The job outlives the upload request, so it runs on its own context.
	go func() {
		defer os.Remove(inputPath)
		defer rec.JobFinished()

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		q, err := converter.Read(ctx, inputPath, func(percent int, message string) {
			job.Publish(jobs.Event{Type: "progress", Percent: percent, Message: message})
		})
		if err != nil {
			s.logger.Error("interpretation job failed", "job_id", job.ID, "error", err)
			job.Fail(err)
			return
		}
		job.Complete(q)
	}()

	writeJSON(w, http.StatusAccepted, ReadResponse{JobID: job.ID})
}

// handleReadStream streams a job's progress as server-sent events. The stream
// ends with a "questionnaire" or "error" event, after which the job is
// removed from the registry.
//
//	@Summary		Stream interpretation progress
//	@Produce		text/event-stream
//	@Param			job_id	path	string	true	"job id"
//	@Success		200
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/questionnaire/read/{job_id} [get]
func (s *Server) handleReadStream(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.JobsFrom(r.Context())
	job, err := registry.Get(r.PathValue("job_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-job.Events():
			if !open {
				// Terminal state reached; deliver the stored outcome.
				q, jobErr := job.Result()
				if jobErr != nil {
					writeEvent(w, flusher, jobs.Event{Type: "error", Error: jobErr.Error()})
				} else {
					writeEvent(w, flusher, jobs.Event{Type: "questionnaire", Questionnaire: q})
				}
				registry.Remove(job.ID)
				return
			}
			writeEvent(w, flusher, event)
		}
	}
}

// JobResponse describes a tracked job.
type JobResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// handleJob returns a job's current state.
//
//	@Summary		Get job status
//	@Produce		json
//	@Param			job_id	path	string	true	"job id"
//	@Success		200	{object}	JobResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/jobs/{job_id} [get]
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.JobsFrom(r.Context())
	job, err := registry.Get(r.PathValue("job_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, JobResponse{
		JobID:     job.ID,
		Status:    string(job.Status()),
		CreatedAt: job.CreatedAt,
	})
}

// writeEvent writes one SSE data frame.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event jobs.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
