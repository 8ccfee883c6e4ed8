package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	api "github.com/quadra2003/networking-lunches/internal/adapters/http/api"
	repository "github.com/quadra2003/networking-lunches/internal/adapters/repository"
	app "github.com/quadra2003/networking-lunches/internal/app"
	model "github.com/quadra2003/networking-lunches/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubService lets each test inject the behavior it needs.
type stubService struct {
	submitFn   func(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error)
	runFn      func(ctx context.Context, cycle string) (*api.RunSummary, error)
	finalizeFn func(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*api.FinalizeResult, error)
	getPartFn  func(ctx context.Context, id string) (*model.Participant, error)
	getGroupFn func(ctx context.Context, id string) (*model.MatchGroup, error)
	listFn     func(ctx context.Context, cycle string) ([]*model.MatchGroup, error)
}

func (s *stubService) SubmitParticipant(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error) {
	return s.submitFn(ctx, p, submissionID)
}

func (s *stubService) RunCycle(ctx context.Context, cycle string) (*api.RunSummary, error) {
	return s.runFn(ctx, cycle)
}

func (s *stubService) FinalizeGroup(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*api.FinalizeResult, error) {
	return s.finalizeFn(ctx, groupID, meetingTime, venue)
}

func (s *stubService) Participant(ctx context.Context, id string) (*model.Participant, error) {
	return s.getPartFn(ctx, id)
}

func (s *stubService) Group(ctx context.Context, id string) (*model.MatchGroup, error) {
	return s.getGroupFn(ctx, id)
}

func (s *stubService) GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error) {
	return s.listFn(ctx, cycle)
}

func (s *stubService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func validParticipantBody() map[string]interface{} {
	return map[string]interface{}{
		"submission_id":  "sub-1",
		"name":           "Ada",
		"email":          "ada@example.com",
		"practice_areas": []string{"corp"},
		"experience":     "associate",
		"availability":   []string{"weekday-lunch"},
		"locations":      []string{"tustin"},
		"cycle":          "2026-q3",
	}
}

func TestPostParticipant(t *testing.T) {
	Convey("Given the participants endpoint", t, func() {
		deps := &stubService{
			submitFn: func(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error) {
				return "p-1", false, nil
			},
		}
		mux := newMux(deps)

		Convey("When posting a valid signup", func() {
			rec := doJSON(mux, http.MethodPost, "/participants", validParticipantBody())

			Convey("Then it is accepted with the new id", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var ack map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["id"], ShouldEqual, "p-1")
				So(ack["duplicate"], ShouldBeFalse)
			})
		})

		Convey("When the submission id was already seen", func() {
			deps.submitFn = func(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error) {
				return "", true, nil
			}
			rec := doJSON(mux, http.MethodPost, "/participants", validParticipantBody())

			Convey("Then the ack flags the duplicate", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/participants", bytes.NewBufferString("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a slot name is unknown", func() {
			body := validParticipantBody()
			body["availability"] = []string{"brunch"}
			rec := doJSON(mux, http.MethodPost, "/participants", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the experience level is unknown", func() {
			body := validParticipantBody()
			body["experience"] = "intern"
			rec := doJSON(mux, http.MethodPost, "/participants", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the submission", func() {
			deps.submitFn = func(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error) {
				return "", false, app.ErrInvalidSubmission
			}
			rec := doJSON(mux, http.MethodPost, "/participants", validParticipantBody())

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			rec := doJSON(mux, http.MethodGet, "/participants", nil)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGetParticipant(t *testing.T) {
	Convey("Given the participant lookup endpoint", t, func() {
		deps := &stubService{
			getPartFn: func(ctx context.Context, id string) (*model.Participant, error) {
				if id != "p-1" {
					return nil, repository.ErrNotFound
				}
				return &model.Participant{ID: "p-1", Name: "Ada", Status: model.StatusPending}, nil
			},
		}
		mux := newMux(deps)

		Convey("When fetching an existing participant", func() {
			rec := doJSON(mux, http.MethodGet, "/participants/p-1", nil)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var p model.Participant
			So(json.Unmarshal(rec.Body.Bytes(), &p), ShouldBeNil)
			So(p.Name, ShouldEqual, "Ada")
		})

		Convey("When the participant does not exist", func() {
			rec := doJSON(mux, http.MethodGet, "/participants/missing", nil)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostRun(t *testing.T) {
	Convey("Given the runs endpoint", t, func() {
		deps := &stubService{
			runFn: func(ctx context.Context, cycle string) (*api.RunSummary, error) {
				return &api.RunSummary{Cycle: cycle, GroupIDs: []string{"g-1", "g-2"}, Matched: 7}, nil
			},
		}
		mux := newMux(deps)

		Convey("When triggering a run", func() {
			rec := doJSON(mux, http.MethodPost, "/runs", map[string]interface{}{"cycle": "2026-q3"})

			Convey("Then the summary comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var summary api.RunSummary
				So(json.Unmarshal(rec.Body.Bytes(), &summary), ShouldBeNil)
				So(summary.GroupIDs, ShouldHaveLength, 2)
				So(summary.Matched, ShouldEqual, 7)
			})
		})

		Convey("When the cycle is missing", func() {
			rec := doJSON(mux, http.MethodPost, "/runs", map[string]interface{}{})

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a run is already in flight", func() {
			deps.runFn = func(ctx context.Context, cycle string) (*api.RunSummary, error) {
				return nil, app.ErrRunInFlight
			}
			rec := doJSON(mux, http.MethodPost, "/runs", map[string]interface{}{"cycle": "2026-q3"})

			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the run fails mid-commit", func() {
			deps.runFn = func(ctx context.Context, cycle string) (*api.RunSummary, error) {
				return nil, &app.RunError{Cycle: cycle, Committed: []string{"g-1"}, Err: errors.New("store down")}
			}
			rec := doJSON(mux, http.MethodPost, "/runs", map[string]interface{}{"cycle": "2026-q3"})

			Convey("Then the response lists the committed groups", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				var body map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "partial_commit")
				So(body["committed_groups"], ShouldResemble, []interface{}{"g-1"})
			})
		})
	})
}

func TestGroupEndpoints(t *testing.T) {
	group := &model.MatchGroup{
		ID:        "g-1",
		Cycle:     "2026-q3",
		Slot:      model.WeekdayLunch,
		Location:  "tustin",
		MemberIDs: []string{"p-1", "p-2", "p-3"},
	}

	Convey("Given the groups endpoints", t, func() {
		deps := &stubService{
			listFn: func(ctx context.Context, cycle string) ([]*model.MatchGroup, error) {
				return []*model.MatchGroup{group}, nil
			},
			getGroupFn: func(ctx context.Context, id string) (*model.MatchGroup, error) {
				if id != "g-1" {
					return nil, repository.ErrNotFound
				}
				return group, nil
			},
			finalizeFn: func(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*api.FinalizeResult, error) {
				return &api.FinalizeResult{GroupID: groupID, Notified: []string{"p-1", "p-2", "p-3"}}, nil
			},
		}
		mux := newMux(deps)

		Convey("When listing groups for a cycle", func() {
			rec := doJSON(mux, http.MethodGet, "/groups?cycle=2026-q3", nil)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var groups []*model.MatchGroup
			So(json.Unmarshal(rec.Body.Bytes(), &groups), ShouldBeNil)
			So(groups, ShouldHaveLength, 1)
			So(groups[0].ID, ShouldEqual, "g-1")
		})

		Convey("When listing without a cycle", func() {
			rec := doJSON(mux, http.MethodGet, "/groups", nil)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching one group", func() {
			rec := doJSON(mux, http.MethodGet, "/groups/g-1", nil)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When fetching an unknown group", func() {
			rec := doJSON(mux, http.MethodGet, "/groups/missing", nil)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When finalizing a group", func() {
			rec := doJSON(mux, http.MethodPost, "/groups/g-1/finalize", map[string]interface{}{
				"meeting_time": "2026-09-10T12:00:00Z",
				"venue":        "cafe verde",
			})

			Convey("Then the fan-out result comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var result api.FinalizeResult
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.Notified, ShouldHaveLength, 3)
			})
		})

		Convey("When the meeting time is not RFC3339", func() {
			rec := doJSON(mux, http.MethodPost, "/groups/g-1/finalize", map[string]interface{}{
				"meeting_time": "next tuesday",
				"venue":        "cafe verde",
			})

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the group was already finalized", func() {
			deps.finalizeFn = func(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*api.FinalizeResult, error) {
				return nil, app.ErrAlreadyFinalized
			}
			rec := doJSON(mux, http.MethodPost, "/groups/g-1/finalize", map[string]interface{}{
				"meeting_time": "2026-09-10T12:00:00Z",
				"venue":        "cafe verde",
			})

			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When every invitation was dropped", func() {
			deps.finalizeFn = func(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*api.FinalizeResult, error) {
				return &api.FinalizeResult{GroupID: groupID, Skipped: []string{"p-1", "p-2", "p-3"}}, nil
			}
			rec := doJSON(mux, http.MethodPost, "/groups/g-1/finalize", map[string]interface{}{
				"meeting_time": "2026-09-10T12:00:00Z",
				"venue":        "cafe verde",
			})

			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux := newMux(&stubService{})

		Convey("When fetching stats", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", nil)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldBeTrue)
		})
	})
}
