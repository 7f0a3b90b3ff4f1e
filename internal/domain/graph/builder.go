package graph

import (
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
)

// Build constructs the relationship multigraph from a full snapshot.
//
// The builder is pure: it holds no state between calls and performs no
// caching. It must be handed a fresh, complete snapshot each time; building
// twice and merging would double-count every channel.
//
// Cost is quadratic in group size (pairs within a team, a skill cohort, a
// domain cohort), which stays cheap because those groups are small relative
// to the total user count.
func Build(snap *model.Snapshot) *Graph {
	g := NewGraph()
	if snap == nil {
		return g
	}

	for _, u := range snap.Users {
		g.AddNode(u.ID)
	}

	buildCollabEdges(g, snap.Participation)
	buildSkillEdges(g, snap.UserSkills)
	buildDomainEdges(g, snap.Participation, snap.Events)

	return g
}

// buildCollabEdges increments the collab channel once per unordered pair of
// co-members, per team.
func buildCollabEdges(g *Graph, participation []model.Participation) {
	rosters := make(map[int64][]int64)
	for _, p := range participation {
		if p.UserID <= 0 {
			continue // unparseable row, skipped
		}
		rosters[p.TeamID] = append(rosters[p.TeamID], p.UserID)
	}
	for _, members := range rosters {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.edge(members[i], members[j]).Collab++
			}
		}
	}
}

// buildSkillEdges increments the skill channel by the arithmetic mean of the
// two users' levels, per shared skill.
func buildSkillEdges(g *Graph, userSkills []model.UserSkill) {
	type holder struct {
		user  int64
		level model.SkillLevel
	}
	cohorts := make(map[string][]holder)
	for _, us := range userSkills {
		if us.UserID <= 0 {
			continue
		}
		level := us.Level
		if level < model.LevelBeginner || level > model.LevelPro {
			level = model.LevelBeginner
		}
		cohorts[us.Skill] = append(cohorts[us.Skill], holder{user: us.UserID, level: level})
	}
	for _, entries := range cohorts {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				w := (float64(entries[i].level) + float64(entries[j].level)) / 2.0
				g.edge(entries[i].user, entries[j].user).Skill += w
			}
		}
	}
}

// buildDomainEdges increments the domain channel once per shared event
// domain. Skipped entirely when no event data is supplied.
func buildDomainEdges(g *Graph, participation []model.Participation, events []model.Event) {
	if len(events) == 0 {
		return
	}
	domains := make(map[int64]string, len(events))
	for _, ev := range events {
		if ev.Domain != "" {
			domains[ev.ID] = ev.Domain
		}
	}

	userDomains := make(map[int64]map[string]struct{})
	for _, p := range participation {
		if p.UserID <= 0 {
			continue
		}
		dom, ok := domains[p.EventID]
		if !ok {
			continue
		}
		set := userDomains[p.UserID]
		if set == nil {
			set = make(map[string]struct{})
			userDomains[p.UserID] = set
		}
		set[dom] = struct{}{}
	}

	buckets := make(map[string][]int64)
	for uid, doms := range userDomains {
		for dom := range doms {
			buckets[dom] = append(buckets[dom], uid)
		}
	}
	for _, users := range buckets {
		for i := 0; i < len(users); i++ {
			for j := i + 1; j < len(users); j++ {
				g.edge(users[i], users[j]).Domain++
			}
		}
	}
}
