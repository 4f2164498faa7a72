// Package main implements the booking_agent CLI for hotel booking-engine
// discovery and vendor fingerprinting.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "booking_agent",
	Short: "Hotel booking-engine discovery agent",
	Long:  "booking_agent resolves a hotel property to its GDS chain code and a trustworthy booking-engine URL using only freely accessible sources and heuristic vendor fingerprinting.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
