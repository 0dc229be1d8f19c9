package simulate

import "time"

// Config holds configuration for the usage event simulator.
type Config struct {
	BaseURL  string        // Base URL of the service
	Rate     int           // Events per second
	Duration time.Duration // How long to generate events
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose logging
}

// Event represents a usage event to be submitted.
type Event struct {
	EventID   string `json:"event_id"`
	AppID     string `json:"app_id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// Stats holds simulation statistics.
type Stats struct {
	EventsSubmitted int
	EventsAccepted  int
	EventsFailed    int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
