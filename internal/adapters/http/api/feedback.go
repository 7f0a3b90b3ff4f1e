// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/Ishita-2210/teamforge-recommender/internal/app"
)

// FeedbackHandler handles swipe/accept feedback submissions.
type FeedbackHandler struct {
	deps Dependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Dependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

// feedbackRequest mirrors the wire schema for POST /feedback. EventID is
// optional; clients that supply one get idempotent retries.
type feedbackRequest struct {
	EventID string `json:"event_id,omitempty"`
	UserID  int64  `json:"user_id"`
	Action  string `json:"action"`
}

func (f feedbackRequest) validate() error {
	switch {
	case f.UserID <= 0:
		return errors.New("missing or invalid user_id")
	case strings.TrimSpace(f.Action) == "":
		return errors.New("missing action")
	}
	return nil
}

type feedbackResponse struct {
	UserID    int64   `json:"user_id"`
	Action    string  `json:"action"`
	Reward    float64 `json:"reward"`
	Duplicate bool    `json:"duplicate"`
}

// HandlePostFeedback handles POST /feedback requests. The reward is
// returned immediately; the learning update happens asynchronously.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	reward, duplicate, err := h.deps.RecordFeedback(r.Context(), req.EventID, req.UserID, req.Action)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	case errors.Is(err, service.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusAccepted, feedbackResponse{
		UserID:    req.UserID,
		Action:    req.Action,
		Reward:    reward,
		Duplicate: duplicate,
	})
}
