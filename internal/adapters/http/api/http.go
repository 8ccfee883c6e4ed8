// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quadra2003/networking-lunches/internal/adapters/repository"
	"github.com/quadra2003/networking-lunches/internal/app"
	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitParticipant persists a signup. The returned bool reports a
	// duplicate submission id.
	SubmitParticipant(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error)

	// RunCycle executes a matching run for one cycle.
	RunCycle(ctx context.Context, cycle string) (*RunSummary, error)

	// FinalizeGroup locks a group's logistics and fans out invitations.
	FinalizeGroup(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*FinalizeResult, error)

	// Read operations expose participant and group data.
	Participant(ctx context.Context, id string) (*model.Participant, error)
	Group(ctx context.Context, id string) (*model.MatchGroup, error)
	GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error)
}

// RunSummary and FinalizeResult mirror the read shapes returned by the
// service layer.
type (
	RunSummary     = app.RunSummary
	FinalizeResult = app.FinalizeResult
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	participantsHandler *ParticipantsHandler
	runsHandler         *RunsHandler
	groupsHandler       *GroupsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		participantsHandler: NewParticipantsHandler(deps),
		runsHandler:         NewRunsHandler(deps),
		groupsHandler:       NewGroupsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/participants", MetricsMiddleware(s.participantsHandler.HandlePostParticipant, "participants"))
	mux.HandleFunc("/participants/", MetricsMiddleware(s.participantsHandler.HandleGetParticipant, "participant"))
	mux.HandleFunc("/runs", MetricsMiddleware(s.runsHandler.HandlePostRun, "runs"))
	mux.HandleFunc("/groups", MetricsMiddleware(s.groupsHandler.HandleListGroups, "groups"))
	mux.HandleFunc("/groups/", MetricsMiddleware(s.groupsHandler.HandleGroupByID, "group"))
}

// participantRequest mirrors the OpenAPI schema for POST /participants.
type participantRequest struct {
	SubmissionID         string              `json:"submission_id"`
	Name                 string              `json:"name"`
	Email                string              `json:"email"`
	PracticeAreas        []string            `json:"practice_areas"`
	Experience           string              `json:"experience"`
	Availability         []string            `json:"availability"`
	Locations            []string            `json:"locations"`
	SlotLocations        map[string][]string `json:"slot_locations,omitempty"`
	UsesSeparateLocation bool                `json:"uses_separate_locations,omitempty"`
	Cycle                string              `json:"cycle"`
}

func (p participantRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(p.Email) == "":
		return errors.New("missing email")
	case strings.TrimSpace(p.Cycle) == "":
		return errors.New("missing cycle")
	case len(p.Availability) == 0:
		return errors.New("missing availability")
	}
	for _, s := range p.Availability {
		if _, err := model.ParseSlot(s); err != nil {
			return err
		}
	}
	if _, err := model.ParseExperienceLevel(p.Experience); err != nil {
		return err
	}
	return nil
}

// toModel converts a validated request into the domain shape.
func (p participantRequest) toModel() *model.Participant {
	slots := make([]model.Slot, 0, len(p.Availability))
	for _, s := range p.Availability {
		slot, _ := model.ParseSlot(s)
		slots = append(slots, slot)
	}
	var slotLocations map[model.Slot][]string
	if len(p.SlotLocations) > 0 {
		slotLocations = make(map[model.Slot][]string, len(p.SlotLocations))
		for s, locs := range p.SlotLocations {
			if slot, err := model.ParseSlot(s); err == nil {
				slotLocations[slot] = locs
			}
		}
	}
	return &model.Participant{
		Name:                  p.Name,
		Email:                 p.Email,
		PracticeAreas:         p.PracticeAreas,
		Experience:            model.ExperienceLevel(p.Experience),
		Availability:          slots,
		Locations:             p.Locations,
		SlotLocations:         slotLocations,
		UsesSeparateLocations: p.UsesSeparateLocation,
		Cycle:                 p.Cycle,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Committed []string `json:"committed_groups,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
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

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
