// Command solve answers a question from a PNG screenshot or plain text
// without the resident assistant: useful for scripting and for testing
// credentials.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"screen-assistant/config"
	"screen-assistant/llm"
	"screen-assistant/ocr"
	"screen-assistant/solver"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	imagePath  string
	text       string
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(os.Args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "solve",
		Short:         "Answer a question from a PNG screenshot or plain text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.imagePath, "image", "", "Path to PNG screenshot (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Question text (skips OCR)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.MarkFlagsMutuallyExclusive("image", "text")
	cmd.MarkFlagsOneRequired("image", "text")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Solver model: %s, OCR model: %s\n", cfg.Solver.Model, cfg.OCR.Model)
	}

	question := opts.text
	if opts.imagePath != "" {
		imageData, err := readImage(opts.imagePath, opts.verbose)
		if err != nil {
			return err
		}
		ocrClient := ocr.New(llm.New("ocr", llm.Config{
			APIKey:      cfg.OCR.APIKey,
			BaseURL:     cfg.OCR.BaseURL,
			Model:       cfg.OCR.Model,
			MaxTokens:   2000,
			Temperature: 0.1,
		}))
		question, err = ocrClient.Extract(context.Background(), imageData)
		if err != nil {
			return fmt.Errorf("text extraction failed: %w", err)
		}
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Extracted %d characters\n", len(question))
		}
	}

	solverClient := solver.New(llm.New("solver", llm.Config{
		APIKey:    cfg.Solver.APIKey,
		BaseURL:   cfg.Solver.BaseURL,
		Model:     cfg.Solver.Model,
		MaxTokens: cfg.AnswerMaxTokens,
	}))

	startTime := time.Now()
	answer, err := solverClient.Answer(context.Background(), question, nil)
	elapsed := time.Since(startTime)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Answered in %v, %d characters\n", elapsed, len(answer))
	}

	return outputResult(question, answer, cfg.Solver.Model, elapsed, opts.jsonOutput)
}

func readImage(path string, verbose bool) ([]byte, error) {
	var imageData []byte
	var err error

	if path == "-" {
		imageData, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		imageData, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(imageData) < len(pngMagic) || !bytes.Equal(imageData[:len(pngMagic)], pngMagic) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Read %d bytes of PNG data\n", len(imageData))
	}
	return imageData, nil
}

type solveResult struct {
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Model     string  `json:"model"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func outputResult(question, answer, model string, elapsed time.Duration, jsonOutput bool) error {
	if jsonOutput {
		result := solveResult{
			Question:  question,
			Answer:    answer,
			Model:     model,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	fmt.Println(answer)
	return nil
}
