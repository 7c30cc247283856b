package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/survaize/survaize/internal/ocr"
)

var (
	convertOutputFormat string
	convertUseOCR       bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a questionnaire file to another format",
	Long: `Convert a scanned questionnaire (PDF) or a saved questionnaire model
(JSON) into one of the supported output formats.

Interpreting a PDF calls the configured LLM provider; set the API key in
config.yaml or via environment variables.

Examples:
  survaize convert survey.pdf survey.json
  survaize convert survey.pdf app.cspro -f cspro
  survaize convert survey.json codebook.xlsx -f xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cm, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cm.Get()

		inputPath, outputPath := args[0], args[1]
		format := convertOutputFormat
		if format == "" {
			// Infer from the output extension: survey.json -> json.
			if i := strings.LastIndex(outputPath, "."); i >= 0 {
				format = strings.ToLower(outputPath[i+1:])
			}
		}
		if format == "" {
			return fmt.Errorf("cannot infer output format from %q, use --format", outputPath)
		}

		var extractor ocr.Extractor
		if convertUseOCR {
			manager, err := ocr.NewDockerManager(ocr.DockerConfig{
				ContainerName: cfg.OCR.ContainerName,
				Image:         cfg.OCR.Image,
				HostPort:      cfg.OCR.Port,
			})
			if err != nil {
				return err
			}
			defer manager.Close()
			if err := manager.Start(ctx); err != nil {
				return fmt.Errorf("start OCR container: %w", err)
			}
			extractor = ocr.NewClient(ocr.ClientConfig{
				BaseURL:   manager.URL(),
				Languages: cfg.OCR.Languages,
				Timeout:   cfg.OCR.Timeout,
			})
		}

		converter, err := buildConverter(cfg, extractor, nil, logger)
		if err != nil {
			return err
		}

		_, err = converter.Convert(ctx, inputPath, outputPath, format, func(percent int, message string) {
			fmt.Printf("[%3d%%] %s\n", percent, message)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", outputPath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutputFormat, "format", "f", "", "output format (default: inferred from output extension)")
	convertCmd.Flags().BoolVar(&convertUseOCR, "ocr", false, "run the tesseract OCR container for page text extraction")

	rootCmd.AddCommand(convertCmd)
}
