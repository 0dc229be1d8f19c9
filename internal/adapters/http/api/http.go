// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/neuropulse/internal/adapters/repository"
	"github.com/okian/neuropulse/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest records a usage event. Returns false on rejection.
	Ingest(ctx context.Context, e model.UsageEvent) bool

	// Assessment returns the latest instant assessment.
	Assessment() model.InstantAssessment

	// RecentSessions returns up to limit persisted sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]repository.StoredSession, error)
}

// Server wires HTTP routes for the monitoring API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	eventsHandler     *EventsHandler
	assessmentHandler *AssessmentHandler
	sessionsHandler   *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxSessionsLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		eventsHandler:     NewEventsHandler(deps),
		assessmentHandler: NewAssessmentHandler(deps),
		sessionsHandler:   NewSessionsHandler(deps, maxSessionsLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/assessment", MetricsMiddleware(s.assessmentHandler.HandleGetAssessment, "assessment"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleGetSessions, "sessions"))
}

// eventRequest mirrors the wire schema for POST /events.
type eventRequest struct {
	EventID   string `json:"event_id"`
	AppID     string `json:"app_id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.AppID) == "":
		return errors.New("missing app_id")
	case e.Timestamp <= 0:
		return errors.New("invalid timestamp; must be unix milliseconds")
	}
	if _, err := parseEventType(e.Type); err != nil {
		return err
	}
	return nil
}

// parseEventType maps the wire representation to the model type.
func parseEventType(s string) (model.EventType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOREGROUND":
		return model.EventForeground, nil
	case "BACKGROUND":
		return model.EventBackground, nil
	default:
		return 0, errors.New("invalid type; must be FOREGROUND or BACKGROUND")
	}
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
