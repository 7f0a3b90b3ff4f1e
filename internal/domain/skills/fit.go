// Package skills scores a candidate's held skills against a team's declared
// requirements.
package skills

import (
	"math"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
)

// Scoring constants. The missing-skill penalty is scaled by the requirement's
// priority; the level ceiling bounds the per-requirement contribution.
const (
	missingSkillPenalty = 1.5
	maxLevelValue       = 3.0
)

// Fit returns a [0,1] coverage score for the user's skill map against the
// team's requirements.
//
// Per requirement, weight = priority (1-3). A held skill contributes
// weight*(1 + max(0, level-required)): overshoot is rewarded linearly and
// undershoot is not penalized beyond the flat bonus of 1. A missing skill
// subtracts weight*1.5. The accumulated score is affine-mapped from the
// theoretical range [-maxPossible, +maxPossible] to [0,1] and clamped.
//
// A team with no requirements scores 0.0: without need-data the candidate is
// unscoreable, not neutral.
func Fit(userSkills map[string]model.SkillLevel, needs []model.SkillRequirement) float64 {
	score := 0.0
	maxPossible := 0.0

	for _, need := range needs {
		weight := float64(need.Priority)
		maxPossible += weight * maxLevelValue

		level, held := userSkills[need.Skill]
		if !held {
			score -= weight * missingSkillPenalty
			continue
		}
		overshoot := float64(level) - float64(need.MinLevel)
		bonus := 1.0 + math.Max(0, overshoot)
		score += weight * bonus
	}

	if maxPossible <= 0 {
		return 0.0
	}
	normalized := (score + maxPossible) / (2 * maxPossible)
	return math.Max(0.0, math.Min(1.0, normalized))
}

// Map collapses raw user-skill rows into per-user skill maps, keeping the
// best level seen per skill. Rows with an unparseable user id are skipped.
func Map(rows []model.UserSkill) map[int64]map[string]model.SkillLevel {
	out := make(map[int64]map[string]model.SkillLevel)
	for _, r := range rows {
		if r.UserID <= 0 {
			continue
		}
		level := r.Level
		if level < model.LevelBeginner || level > model.LevelPro {
			level = model.LevelBeginner
		}
		m := out[r.UserID]
		if m == nil {
			m = make(map[string]model.SkillLevel)
			out[r.UserID] = m
		}
		if level > m[r.Skill] {
			m[r.Skill] = level
		}
	}
	return out
}
