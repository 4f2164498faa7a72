package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/booking-scout/internal/report"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve a list of properties",
	Long:  "Resolves every property named in a file (one per line) with bounded parallelism, and writes one combined report.",
	RunE:  runBatch,
}

var (
	batchFile        string
	batchOutputDir   string
	batchAPIKey      string
	batchConcurrency int
	batchCapture     bool
	batchVerbose     bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "File with one property name per line (required)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "out", "o", "out", "Output directory for the report")
	batchCmd.Flags().StringVar(&batchAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "How many properties to process in parallel")
	batchCmd.Flags().BoolVar(&batchCapture, "capture", false, "Capture screenshot evidence of selected URLs (requires Chrome)")
	batchCmd.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "Verbose output")

	if err := batchCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, _ []string) error {
	f, err := os.Open(batchFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", batchFile, err)
	}
	defer func() { _ = f.Close() }()

	var inputs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", batchFile, err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no property names found in %s", batchFile)
	}

	log := newLogger(batchVerbose)
	ctx := context.Background()

	eng, err := buildEngine(ctx, batchAPIKey, "", batchCapture, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	outcomes := eng.ProcessBatch(ctx, inputs, batchConcurrency)

	writer, err := report.NewWriter(batchOutputDir)
	if err != nil {
		return err
	}
	jsonPath, csvPath, err := writer.Write(outcomes)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Processed %d properties\n", len(outcomes))
	_, _ = fmt.Fprintf(os.Stdout, "Report: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Summary: %s\n", csvPath)
	return nil
}
