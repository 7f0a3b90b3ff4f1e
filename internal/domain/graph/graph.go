// Package graph builds and scores the weighted relationship multigraph
// connecting users through shared teams, skills, and event domains.
package graph

// EdgeWeights carries the four independent weight channels of one edge.
// All channels are non-negative and accumulate monotonically during a build.
type EdgeWeights struct {
	Collab   float64 // co-membership count
	Skill    float64 // summed average-level skill overlap
	Domain   float64 // shared event-domain count
	Feedback float64 // reserved, updated externally
}

// pairKey identifies an unordered user pair.
type pairKey struct {
	a, b int64
}

func keyFor(u, v int64) pairKey {
	if u > v {
		u, v = v, u
	}
	return pairKey{a: u, b: v}
}

// Graph is a weighted multigraph over user ids. It is built once from a full
// snapshot and read concurrently afterwards; no method mutates it except the
// builder and SetFeedback.
type Graph struct {
	nodes map[int64]struct{}
	edges map[pairKey]*EdgeWeights
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[int64]struct{}),
		edges: make(map[pairKey]*EdgeWeights),
	}
}

// AddNode registers a user id. Isolated nodes are valid.
func (g *Graph) AddNode(id int64) {
	g.nodes[id] = struct{}{}
}

// HasNode reports whether the user id is present.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge returns the weights between two users, or false when no edge exists.
func (g *Graph) Edge(u, v int64) (EdgeWeights, bool) {
	e, ok := g.edges[keyFor(u, v)]
	if !ok {
		return EdgeWeights{}, false
	}
	return *e, true
}

// edge returns the mutable weights for a pair, creating the edge lazily.
func (g *Graph) edge(u, v int64) *EdgeWeights {
	k := keyFor(u, v)
	e, ok := g.edges[k]
	if !ok {
		e = &EdgeWeights{}
		g.edges[k] = e
		g.nodes[u] = struct{}{}
		g.nodes[v] = struct{}{}
	}
	return e
}

// SetFeedback overwrites the feedback channel of an edge, creating the edge
// if needed. Negative values are clamped to zero to keep all channels
// non-negative.
func (g *Graph) SetFeedback(u, v int64, w float64) {
	if w < 0 {
		w = 0
	}
	g.edge(u, v).Feedback = w
}

// NodeCount returns the number of users in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct connected pairs.
func (g *Graph) EdgeCount() int { return len(g.edges) }
