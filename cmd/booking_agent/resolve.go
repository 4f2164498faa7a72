package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/booking-scout/internal/engine"
	"github.com/jonathan/booking-scout/internal/observability"
	"github.com/jonathan/booking-scout/internal/report"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve one property to its chain code and booking engine",
	Long:  "Resolves a property identifier (a name, or a free-form text file containing one) to a GDS chain code and a scored booking-engine evidence URL.",
	RunE:  runResolve,
}

var (
	resolveName      string
	resolveInputFile string
	resolveDomain    string
	resolveOutputDir string
	resolveAPIKey    string
	resolveCapture   bool
	resolveVerbose   bool
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveName, "name", "n", "", "Property name or free-form identifier")
	resolveCmd.Flags().StringVarP(&resolveInputFile, "input-file", "f", "", "File containing a free-form property reference (alternative to --name)")
	resolveCmd.Flags().StringVar(&resolveDomain, "domain", "", "Property's official domain, if known (enables heuristic booking paths)")
	resolveCmd.Flags().StringVarP(&resolveOutputDir, "out", "o", "out", "Output directory for the report")
	resolveCmd.Flags().StringVar(&resolveAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	resolveCmd.Flags().BoolVar(&resolveCapture, "capture", false, "Capture screenshot evidence of the selected URL (requires Chrome)")
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, _ []string) error {
	input := resolveName
	if input == "" && resolveInputFile != "" {
		data, err := os.ReadFile(resolveInputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file %s: %w", resolveInputFile, err)
		}
		input = string(data)
	}
	if input == "" {
		return fmt.Errorf("a property identifier is required: set --name or --input-file")
	}

	log := newLogger(resolveVerbose)
	ctx := context.Background()

	eng, err := buildEngine(ctx, resolveAPIKey, resolveDomain, resolveCapture, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	outcome := eng.Process(ctx, input)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintOutcome(&outcome)

	writer, err := report.NewWriter(resolveOutputDir)
	if err != nil {
		return err
	}
	jsonPath, csvPath, err := writer.Write([]engine.Outcome{outcome})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Report: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Summary: %s\n", csvPath)
	return nil
}
