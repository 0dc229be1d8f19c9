// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/neuropulse/internal/domain/model"
)

// AssessmentDependencies defines the interface for assessment reads.
type AssessmentDependencies interface {
	Assessment() model.InstantAssessment
}

// AssessmentHandler handles instant assessment requests.
type AssessmentHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(deps AssessmentDependencies) *AssessmentHandler {
	return &AssessmentHandler{deps: deps}
}

// HandleGetAssessment handles GET /assessment requests.
func (h *AssessmentHandler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Assessment())
}
