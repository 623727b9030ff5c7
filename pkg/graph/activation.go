package graph

import "github.com/docpipe/docpipe/pkg/models"

// ActivationTracker records which edges upstream branching decisions have
// activated during one run, and gates node execution on them.
type ActivationTracker struct {
	graph     *Graph
	activated map[string]bool
}

func NewActivationTracker(g *Graph) *ActivationTracker {
	return &ActivationTracker{
		graph:     g,
		activated: make(map[string]bool),
	}
}

// Activate marks the given edges as activated for the remainder of the run.
func (t *ActivationTracker) Activate(edges []*models.Edge) {
	for _, edge := range edges {
		t.activated[edge.ID] = true
	}
}

// ShouldRun reports whether a node is activated. Nodes with no incoming
// edges are entry points and always run. Everything else runs as soon as any
// one inbound edge was activated: an OR-join, not a barrier, which is how
// conditional branches skip some downstream paths while others execute.
func (t *ActivationTracker) ShouldRun(nodeID string) bool {
	incoming := t.graph.Incoming[nodeID]
	if len(incoming) == 0 {
		return true
	}

	for _, edge := range incoming {
		if t.activated[edge.ID] {
			return true
		}
	}

	return false
}
