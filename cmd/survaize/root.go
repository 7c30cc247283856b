package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/survaize/survaize/internal/config"
	"github.com/survaize/survaize/internal/convert"
	"github.com/survaize/survaize/internal/interpreter"
	"github.com/survaize/survaize/internal/metrics"
	"github.com/survaize/survaize/internal/ocr"
	"github.com/survaize/survaize/internal/providers"
	"github.com/survaize/survaize/internal/reader"
	"github.com/survaize/survaize/internal/writer"
	"github.com/survaize/survaize/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "survaize",
	Short: "Turn scanned questionnaires into structured survey applications",
	Long: `Survaize interprets scanned paper questionnaires (PDF) into a structured
questionnaire model using a vision-capable LLM, then converts the result
into machine-readable survey formats.

Supported outputs:
  - json   - the questionnaire model itself
  - cspro  - a complete CSPro data entry application
  - xlsx   - a codebook workbook`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.survaize/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads configuration from the --config flag or default locations.
func loadConfig() (*config.Manager, error) {
	return config.NewManager(cfgFile)
}

// buildLLMClient creates the configured model client.
func buildLLMClient(cfg *config.Config) (providers.LLMClient, error) {
	switch cfg.LLM.Provider {
	case "openai", "azure":
		return providers.NewOpenAIClient(cfg.ProviderConfig())
	case "mock":
		return providers.NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: openai, azure, mock)", cfg.LLM.Provider)
	}
}

// buildConverter wires readers and writers around the interpretation engine.
// The extractor may be nil when no OCR sidecar is running.
func buildConverter(cfg *config.Config, extractor ocr.Extractor, rec *metrics.Recorder, logger *slog.Logger) (*convert.Converter, error) {
	client, err := buildLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []interpreter.Option{interpreter.WithLogger(logger)}
	if cfg.LLM.MaxRetries > 0 {
		opts = append(opts, interpreter.WithMaxRetries(cfg.LLM.MaxRetries))
	}
	if rec != nil {
		opts = append(opts, interpreter.WithMetrics(rec))
	}
	interp, err := interpreter.New(client, cfg.LLM.Model, opts...)
	if err != nil {
		return nil, err
	}

	readers := reader.NewFactory(map[string]reader.Reader{
		"pdf":  reader.NewPDFReader(interp, extractor, logger),
		"json": reader.NewJSONReader(),
	})
	writers := writer.NewFactory(map[string]writer.Writer{
		"json":  writer.NewJSONWriter(logger),
		"cspro": writer.NewCSProWriter(logger),
		"xlsx":  writer.NewXLSXWriter(logger),
	})
	return convert.New(readers, writers, logger), nil
}
