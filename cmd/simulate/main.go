package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/neuropulse/internal/simulate"
	"github.com/okian/neuropulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultRate     = 5
	defaultDuration = time.Minute
	defaultTimeout  = 10 * time.Second
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		rate     = flag.Int("rate", defaultRate, "Events per second")
		duration = flag.Duration("duration", defaultDuration, "How long to generate events")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulate.Config{
		BaseURL:  *baseURL,
		Rate:     *rate,
		Duration: *duration,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
