package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/neuropulse/pkg/logger"
)

// Default runner constants.
const (
	defaultRate     = 5
	defaultDuration = time.Minute
	defaultTimeout  = 10 * time.Second
)

// Run drives the simulation: generate events at the configured rate,
// post them to /events, and report a summary at the end.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Rate <= 0 {
		cfg.Rate = defaultRate
	}
	if cfg.Duration <= 0 {
		cfg.Duration = defaultDuration
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	log := logger.Get().Named("simulate")
	log.Info(ctx, "starting usage event simulation",
		logger.String("url", cfg.BaseURL),
		logger.Int("rate", cfg.Rate),
		logger.Duration("duration", cfg.Duration),
	)

	client := &http.Client{Timeout: cfg.Timeout}
	gen := &generator{}
	stats := &Stats{StartTime: time.Now()}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Rate))
	defer ticker.Stop()

loop:
	for {
		select {
		case <-runCtx.Done():
			break loop
		case now := <-ticker.C:
			event := gen.next(now)
			stats.EventsSubmitted++
			if err := postEvent(runCtx, client, cfg.BaseURL, event); err != nil {
				stats.EventsFailed++
				if cfg.Verbose {
					log.Warn(ctx, "event submission failed",
						logger.String("app", event.AppID), logger.Error(err))
				}
				continue
			}
			stats.EventsAccepted++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation complete",
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("failed", stats.EventsFailed),
		logger.Duration("elapsed", stats.Duration),
	)

	if stats.EventsFailed > 0 && stats.EventsAccepted == 0 {
		return fmt.Errorf("all %d submissions failed", stats.EventsFailed)
	}
	return nil
}

// postEvent submits one event to the service.
func postEvent(ctx context.Context, client *http.Client, baseURL string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/events", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
