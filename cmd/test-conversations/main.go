package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/halcyonlabs/carepulse/internal/simulator"
)

// Default configuration constants.
const (
	defaultNumPatients      = 30
	defaultConversationsPer = 14
	defaultWorkers          = 2 // multiplier for runtime.NumCPU()
	defaultTimeout          = 30 * time.Second
	defaultRunTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPatients   = flag.Int("patients", defaultNumPatients, "Number of synthetic patients to register")
		conversations = flag.Int("conversations", defaultConversationsPer, "Conversations to generate per patient (one per day)")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle        = flag.Duration("settle", simulator.DefaultSettleDelay, "Delay before verifying trends")
		logFile       = flag.String("log", "", "Log file for simulation output (default: simulation_log_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulator.Config{
		BaseURL:          *baseURL,
		NumPatients:      *numPatients,
		ConversationsPer: *conversations,
		Workers:          *workers,
		Timeout:          *timeout,
		SettleDelay:      *settle,
		LogFile:          *logFile,
		Verbose:          *verbose,
	}

	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
