package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/encore/internal/judgesim"
)

// Default configuration constants.
const (
	defaultJudges        = 8
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultResubmitRatio = 0.25
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		judges        = flag.Int("judges", defaultJudges, "Number of judges to simulate")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		resubmitRatio = flag.Float64("resubmit", defaultResubmitRatio, "Fraction of submissions sent twice")
		logFile       = flag.String("log", "", "Log file for test output (default: judge_sim_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		judgesim.ShowHelp()
		return
	}

	if err := judgesim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &judgesim.Config{
		BaseURL:       *baseURL,
		Judges:        *judges,
		Workers:       *workers,
		Timeout:       *timeout,
		ResubmitRatio: *resubmitRatio,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := judgesim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
