// Package model contains domain models passed between layers.
package model

import "strings"

// SkillLevel grades proficiency on the Beginner/Intermediate/Pro scale.
type SkillLevel int

// Skill level values.
const (
	LevelBeginner     SkillLevel = 1
	LevelIntermediate SkillLevel = 2
	LevelPro          SkillLevel = 3
)

// Priority grades how much a team cares about a requirement.
type Priority int

// Priority values.
const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// ParseSkillLevel maps a textual level to its numeric value.
// Unknown or empty input defaults to Beginner.
func ParseSkillLevel(s string) SkillLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner
	case "intermediate":
		return LevelIntermediate
	case "pro":
		return LevelPro
	default:
		return LevelBeginner
	}
}

// ParsePriority maps a textual priority to its numeric value.
// Unknown or empty input defaults to Medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// User is a candidate profile. The pipeline reads it and never mutates it.
type User struct {
	ID     int64
	Role   string
	Skills map[string]SkillLevel // skill name -> best held level
}

// SkillRequirement is one needed skill declared by a team.
type SkillRequirement struct {
	Skill    string
	MinLevel SkillLevel
	Priority Priority
}

// Team is an open slot looking for candidates.
type Team struct {
	ID          int64
	OwnerID     int64 // 0 means no owner / no graph anchor
	EventID     int64 // 0 means not bound to an event
	ProjectText string
	Needs       []SkillRequirement
}

// Participation records a user's membership in a team at an event.
type Participation struct {
	UserID  int64
	TeamID  int64
	EventID int64
}

// UserSkill is a raw user-skill table row.
type UserSkill struct {
	UserID int64
	Skill  string
	Level  SkillLevel
}

// Event carries the domain tag used for domain-overlap edges.
type Event struct {
	ID     int64
	Domain string
}

// Snapshot is a full, immutable view of the matching tables. The graph
// builder and the candidate pool both consume it; it is reloaded wholesale,
// never merged incrementally.
type Snapshot struct {
	Users         []User
	UserSkills    []UserSkill
	Teams         []Team
	Participation []Participation
	Events        []Event
}

// TeamByID returns the team with the given id, or false when absent.
func (s *Snapshot) TeamByID(id int64) (Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Recommendation is one ranked candidate with its full score breakdown.
// The breakdown is part of the contract: the explanation layer and any
// external fairness reranker consume it without recomputing features.
type Recommendation struct {
	UserID        int64   `json:"user_id"`
	FusedScore    float64 `json:"score"`
	SkillScore    float64 `json:"skill_score"`
	SemanticScore float64 `json:"semantic_score"`
	GraphScore    float64 `json:"graph_score"`
	PrimaryRaw    float64 `json:"-"` // raw primary model output, diagnostics only
	SecondaryRaw  float64 `json:"-"` // raw secondary model output, diagnostics only
}
