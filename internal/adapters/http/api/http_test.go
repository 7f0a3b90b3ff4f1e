package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/http/api"
	service "github.com/Ishita-2210/teamforge-recommender/internal/app"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

// fakeDeps implements api.Dependencies with canned responses.
type fakeDeps struct {
	recs        []model.Recommendation
	rankErr     error
	reward      float64
	duplicate   bool
	feedbackErr error

	lastTeamID  int64
	lastTopK    int
	lastRoles   []string
	lastSkills  []string
	lastEventID string
}

func (f *fakeDeps) Rank(_ context.Context, teamID int64, topK int, roles, skills []string) ([]model.Recommendation, error) {
	f.lastTeamID = teamID
	f.lastTopK = topK
	f.lastRoles = roles
	f.lastSkills = skills
	return f.recs, f.rankErr
}

func (f *fakeDeps) RecordFeedback(_ context.Context, eventID string, _ int64, _ string) (float64, bool, error) {
	f.lastEventID = eventID
	return f.reward, f.duplicate, f.feedbackErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}, 50).Register(context.Background(), mux)
	return mux
}

func TestRecommendEndpoint(t *testing.T) {
	convey.Convey("Given the recommend endpoint", t, func() {
		deps := &fakeDeps{recs: []model.Recommendation{
			{UserID: 1, FusedScore: 0.87654321, SkillScore: 0.5, SemanticScore: 0.25, GraphScore: 0.1},
			{UserID: 2, FusedScore: 0.4},
		}}
		mux := newTestServer(deps)

		convey.Convey("When requesting recommendations", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend?team_id=10&top_k=5", nil))

			convey.Convey("Then it should return the ranked list with rounded scores", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var body []map[string]any
				convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(len(body), convey.ShouldEqual, 2)
				convey.So(body[0]["user_id"], convey.ShouldEqual, 1)
				convey.So(body[0]["score"], convey.ShouldEqual, 0.8765) // 4 decimals
				convey.So(deps.lastTeamID, convey.ShouldEqual, 10)
				convey.So(deps.lastTopK, convey.ShouldEqual, 5)
			})

			convey.Convey("Then the response should carry a request id", func() {
				convey.So(rec.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When requesting explanations", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend?team_id=10&explain=true", nil))

			convey.Convey("Then each entry should include reasons", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "reasons")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "skill match")
			})
		})

		convey.Convey("When passing role and skills filters", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend?team_id=10&role=Backend&skills=Go,React", nil))

			convey.Convey("Then the filters should reach the service", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(deps.lastRoles, convey.ShouldResemble, []string{"Backend"})
				convey.So(deps.lastSkills, convey.ShouldResemble, []string{"Go", "React"})
			})
		})

		convey.Convey("When team_id is missing or invalid", func() {
			for _, target := range []string{"/recommend", "/recommend?team_id=abc", "/recommend?team_id=-3"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			}
		})

		convey.Convey("When top_k exceeds the configured maximum", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend?team_id=10&top_k=500", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "top_k_exceeded")
		})

		convey.Convey("When the service fails", func() {
			deps.rankErr = errors.New("snapshot corrupt")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend?team_id=10", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusInternalServerError)
		})

		convey.Convey("When using the wrong method", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend?team_id=10", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestFeedbackEndpoint(t *testing.T) {
	convey.Convey("Given the feedback endpoint", t, func() {
		deps := &fakeDeps{reward: 2.0}
		mux := newTestServer(deps)

		convey.Convey("When posting valid feedback", func() {
			body := strings.NewReader(`{"user_id": 7, "action": "accept"}`)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.Convey("Then it should be accepted with the reward echoed", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)

				var resp map[string]any
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp["user_id"], convey.ShouldEqual, 7)
				convey.So(resp["reward"], convey.ShouldEqual, 2.0)
				convey.So(resp["duplicate"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When posting with an event id", func() {
			body := strings.NewReader(`{"event_id": "fb-abc", "user_id": 7, "action": "accept"}`)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.Convey("Then the id should reach the service", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)
				convey.So(deps.lastEventID, convey.ShouldEqual, "fb-abc")
			})
		})

		convey.Convey("When the submission is a duplicate", func() {
			deps.duplicate = true
			body := strings.NewReader(`{"event_id": "fb-abc", "user_id": 7, "action": "accept"}`)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.Convey("Then it should still be acknowledged, flagged as duplicate", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)

				var resp map[string]any
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp["duplicate"], convey.ShouldEqual, true)
			})
		})

		convey.Convey("When the body is malformed", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader("{")))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When required fields are missing", func() {
			for _, body := range []string{`{}`, `{"user_id": 7}`, `{"action": "accept"}`} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body)))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			}
		})

		convey.Convey("When the queue is saturated", func() {
			deps.feedbackErr = service.ErrQueueFull
			rec := httptest.NewRecorder()
			body := strings.NewReader(`{"user_id": 7, "action": "accept"}`)
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusTooManyRequests)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "backpressure")
		})

		convey.Convey("When the service is not started", func() {
			deps.feedbackErr = service.ErrNotStarted
			rec := httptest.NewRecorder()
			body := strings.NewReader(`{"user_id": 7, "action": "accept"}`)
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.Convey("Then the failure should not masquerade as backpressure", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		convey.Convey("When the service rejects an unexpected user id", func() {
			deps.feedbackErr = service.ErrInvalidUser
			rec := httptest.NewRecorder()
			body := strings.NewReader(`{"user_id": 7, "action": "accept"}`)
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", body))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When using the wrong method", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	convey.Convey("Given the stats endpoint", t, func() {
		mux := newTestServer(&fakeDeps{})

		convey.Convey("When fetching stats", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "started")
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	convey.Convey("Given the health endpoint", t, func() {
		mux := newTestServer(&fakeDeps{})

		convey.Convey("When scraping it", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then it should expose Prometheus metrics", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "teamforge_recommender")
			})
		})
	})
}
