// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/neuropulse/internal/adapters/repository"
)

// Default sessions query constants.
const (
	defaultSessionsLimit = 100
)

// SessionsDependencies defines the interface for session history reads.
type SessionsDependencies interface {
	RecentSessions(ctx context.Context, limit int) ([]repository.StoredSession, error)
}

// SessionsHandler handles session history requests.
type SessionsHandler struct {
	deps     SessionsDependencies
	maxLimit int
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionsDependencies, maxLimit int) *SessionsHandler {
	return &SessionsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetSessions handles GET /sessions?limit=N requests.
func (h *SessionsHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sessions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := defaultSessionsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}

	sessions, err := h.deps.RecentSessions(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
