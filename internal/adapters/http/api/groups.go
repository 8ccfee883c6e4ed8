// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quadra2003/networking-lunches/internal/app"
)

// finalizeRequest mirrors the OpenAPI schema for POST /groups/{id}/finalize.
type finalizeRequest struct {
	MeetingTime string `json:"meeting_time"`
	Venue       string `json:"venue"`
}

func (f finalizeRequest) validate() (time.Time, error) {
	if strings.TrimSpace(f.Venue) == "" {
		return time.Time{}, errors.New("missing venue")
	}
	if strings.TrimSpace(f.MeetingTime) == "" {
		return time.Time{}, errors.New("missing meeting_time")
	}
	ts, err := time.Parse(time.RFC3339, f.MeetingTime)
	if err != nil {
		return time.Time{}, errors.New("invalid meeting_time; must be RFC3339")
	}
	return ts, nil
}

// GroupsHandler handles group listing, lookup, and finalization.
type GroupsHandler struct {
	deps Dependencies
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(deps Dependencies) *GroupsHandler {
	return &GroupsHandler{deps: deps}
}

// HandleListGroups handles GET /groups?cycle=... requests.
func (h *GroupsHandler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_groups"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cycle := r.URL.Query().Get("cycle")
	if cycle == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: missing cycle", op, ErrBadRequest))
		return
	}
	groups, err := h.deps.GroupsByCycle(r.Context(), cycle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleGroupByID routes GET /groups/{id} and POST /groups/{id}/finalize.
func (h *GroupsHandler) HandleGroupByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/groups/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(path, "/finalize"); ok {
		h.handleFinalize(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.handleGet(w, r, path)
}

func (h *GroupsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	g, err := h.deps.Group(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupsHandler) handleFinalize(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.finalize_group"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}
	meetingTime, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.FinalizeGroup(r.Context(), id, meetingTime, req.Venue)
	if err != nil {
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, app.ErrAlreadyFinalized):
			writeError(w, http.StatusConflict, "already_finalized", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		}
		return
	}
	// All invitations dropped means the notify queue is saturated; the
	// group stays finalized but the caller should retry delivery later.
	if len(result.Notified) == 0 && len(result.Skipped) > 0 {
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
