// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/neuropulse/internal/domain/model"
)

// EventDependencies defines the interface for event ingestion dependencies.
type EventDependencies interface {
	Ingest(ctx context.Context, e model.UsageEvent) bool
}

// EventsHandler handles usage event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	eventType, _ := parseEventType(req.Type)
	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	event := model.UsageEvent{
		EventID:   eventID,
		AppID:     req.AppID,
		Type:      eventType,
		Timestamp: req.Timestamp,
	}
	if ok := h.deps.Ingest(r.Context(), event); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
