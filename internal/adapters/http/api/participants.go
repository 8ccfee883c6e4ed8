// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quadra2003/networking-lunches/internal/app"
)

// ParticipantsHandler handles participant intake and lookup requests.
type ParticipantsHandler struct {
	deps Dependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps Dependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

// HandlePostParticipant handles POST /participants requests.
func (h *ParticipantsHandler) HandlePostParticipant(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_participant"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}

	id, duplicate, err := h.deps.SubmitParticipant(r.Context(), req.toModel(), req.SubmissionID)
	if err != nil {
		if errors.Is(err, app.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: id, Duplicate: false})
}

// HandleGetParticipant handles GET /participants/{id} requests.
func (h *ParticipantsHandler) HandleGetParticipant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /participants/
	id := strings.TrimPrefix(r.URL.Path, "/participants/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	p, err := h.deps.Participant(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
