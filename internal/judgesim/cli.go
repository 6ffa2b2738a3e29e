package judgesim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/encore/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "judge_sim_" + timestamp + ".log"
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

// ShowHelp prints usage information for the judge simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Encore Judge Simulation Tool
============================

A concurrent tool for exercising the Encore room scoring system.

Usage:
  go run cmd/test-judges/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -judges int
        Number of judges to simulate (default 8)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -resubmit float
        Fraction of submissions sent twice to exercise replacement (default 0.25)
  -log string
        Log file for test output (default: judge_sim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/test-judges/main.go

  # Simulate a big panel against a local server
  go run cmd/test-judges/main.go -judges 50 -workers 16 -url http://localhost:8080

  # Force heavy resubmission to stress replacement
  go run cmd/test-judges/main.go -resubmit 0.8 -verbose
`)
}
