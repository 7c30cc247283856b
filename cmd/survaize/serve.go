package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	// Registers the generated OpenAPI spec.
	_ "github.com/survaize/survaize/docs/swagger"
	"github.com/survaize/survaize/internal/jobs"
	"github.com/survaize/survaize/internal/metrics"
	"github.com/survaize/survaize/internal/ocr"
	"github.com/survaize/survaize/internal/server"
	"github.com/survaize/survaize/internal/svcctx"
)

var (
	serveHost    string
	servePort    int
	serveNoOCR   bool
	serveSwagger string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Survaize server",
	Long: `Start the Survaize HTTP API server.

Unless --no-ocr is given, a tesseract-server container is started for page
text extraction and stopped again on shutdown.

The server provides:
  - POST /api/questionnaire/read          - upload a questionnaire, returns a job id
  - GET  /api/questionnaire/read/{job_id} - SSE progress stream ending in the result
  - GET  /api/jobs/{job_id}               - job status
  - GET  /health, /ready, /metrics

Examples:
  survaize serve                 # Start on default port 8000
  survaize serve --port 3000     # Start on custom port
  survaize serve --host 0.0.0.0  # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cm, err := loadConfig()
		if err != nil {
			return err
		}
		cm.WatchConfig()
		cfg := cm.Get()

		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		var extractor ocr.Extractor
		if !serveNoOCR {
			manager, err := ocr.NewDockerManager(ocr.DockerConfig{
				ContainerName: cfg.OCR.ContainerName,
				Image:         cfg.OCR.Image,
				HostPort:      cfg.OCR.Port,
			})
			if err != nil {
				return err
			}
			defer manager.Close()

			logger.Info("starting OCR container", "image", cfg.OCR.Image)
			if err := manager.Start(ctx); err != nil {
				return fmt.Errorf("start OCR container: %w", err)
			}
			defer func() {
				// The command context is already cancelled during shutdown.
				if err := manager.Stop(context.Background()); err != nil {
					logger.Error("OCR container stop error", "error", err)
				}
			}()
			extractor = ocr.NewClient(ocr.ClientConfig{
				BaseURL:   manager.URL(),
				Languages: cfg.OCR.Languages,
				Timeout:   cfg.OCR.Timeout,
			})
		}

		rec := metrics.NewRecorder()
		converter, err := buildConverter(cfg, extractor, rec, logger)
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Host: host,
			Port: port,
			Services: &svcctx.Services{
				Converter: converter,
				Jobs:      jobs.NewRegistry(logger),
				Metrics:   rec,
				Logger:    logger,
			},
			SwaggerPath: serveSwagger,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveNoOCR, "no-ocr", false, "Skip starting the tesseract OCR container")
	serveCmd.Flags().StringVar(&serveSwagger, "swagger", "docs/swagger/swagger.json", "Path to the generated swagger.json")

	rootCmd.AddCommand(serveCmd)
}
