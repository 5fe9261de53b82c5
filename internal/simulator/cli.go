package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/halcyonlabs/carepulse/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the conversation simulator.
func ShowHelp() {
	os.Stdout.WriteString(`CarePulse Conversation Simulator
================================

Generates synthetic patients and companion conversations, submits them
concurrently, and verifies the trend directions the service derives.

Patients are split across three cohorts: stable, improving and declining.
Each cohort drifts its metric values over the generated history so the
trend endpoint should classify it accordingly.

Usage:
  go run cmd/test-conversations/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -patients int
        Number of synthetic patients (default 30)
  -conversations int
        Conversations per patient (default 14)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait after submission before verifying trends (default 5s)
  -log string
        Log file for simulator output (default: simulation_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/test-conversations/main.go

  # A larger cohort against a staging host
  go run cmd/test-conversations/main.go -patients 300 -conversations 30 -url http://staging:9080

  # Verbose output with a custom log file
  go run cmd/test-conversations/main.go -verbose -log my_simulation.log
`)
}
