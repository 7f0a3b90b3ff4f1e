package embedding

// SemanticProvider serves text-embedding cosine similarity between a team
// and every known user. Both matrices are loaded once and reused for the
// process lifetime.
type SemanticProvider struct {
	teams *Repository
	users *Repository
}

// NewSemanticProvider wires the team and user repositories. Either may be
// nil when the corresponding artifact failed to load; lookups then return
// empty results instead of erroring.
func NewSemanticProvider(teams, users *Repository) *SemanticProvider {
	return &SemanticProvider{teams: teams, users: users}
}

// ScoresForTeam returns cosine similarity between the team's embedding and
// every known user embedding. An unknown team id yields an empty map; the
// caller treats missing user entries as score 0.0.
func (p *SemanticProvider) ScoresForTeam(teamID int64) map[int64]float64 {
	out := make(map[int64]float64)
	if p == nil || p.teams == nil || p.users == nil {
		return out
	}
	teamVec, ok := p.teams.Vector(teamID)
	if !ok {
		return out
	}
	// One pass over the full user matrix per call.
	for _, uid := range p.users.IDs() {
		vec, _ := p.users.Vector(uid)
		out[uid] = Cosine(teamVec, vec)
	}
	return out
}

// Loaded reports whether both matrices are available.
func (p *SemanticProvider) Loaded() bool {
	return p != nil && p.teams != nil && p.users != nil
}
