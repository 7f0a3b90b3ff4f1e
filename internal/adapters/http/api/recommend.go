// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Ishita-2210/teamforge-recommender/internal/explain"
)

const defaultTopK = 10

// RecommendHandler handles candidate ranking requests.
type RecommendHandler struct {
	deps    Dependencies
	maxTopK int
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps Dependencies, maxTopK int) *RecommendHandler {
	if maxTopK <= 0 {
		maxTopK = defaultTopK
	}
	return &RecommendHandler{deps: deps, maxTopK: maxTopK}
}

// recommendation is the wire shape for one ranked candidate. Scores are
// rounded to 4 decimals at this boundary only.
type recommendation struct {
	UserID        int64    `json:"user_id"`
	Score         float64  `json:"score"`
	SkillScore    float64  `json:"skill_score"`
	SemanticScore float64  `json:"semantic_score"`
	GraphScore    float64  `json:"graph_score"`
	Reasons       []string `json:"reasons,omitempty"`
}

// HandleGetRecommend handles
// GET /recommend?team_id=N&top_k=K&role=R&skills=a,b&explain=true.
func (h *RecommendHandler) HandleGetRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommend"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	teamID, err := strconv.ParseInt(q.Get("team_id"), 10, 64)
	if err != nil || teamID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	topK := defaultTopK
	if v := q.Get("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil || topK < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if topK > h.maxTopK {
		writeError(w, http.StatusBadRequest, "top_k_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	var roles []string
	if role := strings.TrimSpace(q.Get("role")); role != "" {
		roles = []string{role}
	}
	var skills []string
	if raw := q.Get("skills"); raw != "" {
		skills = strings.Split(raw, ",")
	}
	withReasons := q.Get("explain") == "true"

	recs, err := h.deps.Rank(r.Context(), teamID, topK, roles, skills)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	out := make([]recommendation, len(recs))
	for i, rec := range recs {
		out[i] = recommendation{
			UserID:        rec.UserID,
			Score:         round4(rec.FusedScore),
			SkillScore:    round4(rec.SkillScore),
			SemanticScore: round4(rec.SemanticScore),
			GraphScore:    round4(rec.GraphScore),
		}
		if withReasons {
			out[i].Reasons = explain.Reasons(rec)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
