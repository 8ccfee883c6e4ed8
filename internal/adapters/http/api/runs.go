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

// runRequest mirrors the OpenAPI schema for POST /runs.
type runRequest struct {
	Cycle string `json:"cycle"`
}

// RunsHandler triggers matching runs.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandlePostRun handles POST /runs requests.
func (h *RunsHandler) HandlePostRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_run"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Cycle) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: missing cycle", op, ErrBadRequest))
		return
	}

	summary, err := h.deps.RunCycle(r.Context(), req.Cycle)
	if err != nil {
		if errors.Is(err, app.ErrRunInFlight) {
			writeError(w, http.StatusConflict, "run_in_flight", err)
			return
		}
		// A partial commit reports the groups that made it in so an
		// operator can review or delete them.
		var runErr *app.RunError
		if errors.As(err, &runErr) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Code:      "partial_commit",
				Message:   runErr.Error(),
				Committed: runErr.Committed,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
