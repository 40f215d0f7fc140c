package scheduler

import (
	"github.com/ZacxDev/stepsim/step"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Graph owns every step of a run. Steps reference each other by identifier.
type Graph struct {
	steps map[string]*step.Step
	edges []step.Edge
}

// NewGraph builds a graph from edges, creating steps on first reference.
// Acyclicity is not checked here; a cycle surfaces later as a StallError.
func NewGraph(edges []step.Edge) *Graph {
	g := &Graph{
		steps: make(map[string]*step.Step),
	}
	for _, e := range edges {
		g.AddEdge(e.Before, e.After)
	}
	return g
}

// AddStep adds an isolated step. It does nothing if the step already exists.
func (g *Graph) AddStep(id string) *step.Step {
	s, ok := g.steps[id]
	if !ok {
		s = &step.Step{ID: id}
		g.steps[id] = s
	}
	return s
}

func (g *Graph) AddEdge(before, after string) {
	b := g.AddStep(before)
	b.Successors = append(b.Successors, after)

	a := g.AddStep(after)
	a.Predecessors = append(a.Predecessors, before)

	g.edges = append(g.edges, step.Edge{Before: before, After: after})
}

func (g *Graph) Get(id string) (*step.Step, error) {
	s, ok := g.steps[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "step %s", id)
	}
	return s, nil
}

// IDs returns every step identifier in ascending order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.steps))
	for id := range g.steps {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

func (g *Graph) Len() int {
	return len(g.steps)
}

// Edges returns the edges in the order they were added.
func (g *Graph) Edges() []step.Edge {
	return slices.Clone(g.edges)
}

// DetectCycle returns the steps of one cycle, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) DetectCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(id string) []string
	dfs = func(id string) []string {
		color[id] = gray
		for _, next := range g.steps[id].Successors {
			if color[next] == gray {
				cycle := []string{next, id}
				for cur := id; cur != next; {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				slices.Reverse(cycle)
				return cycle
			}
			if color[next] == white {
				parent[next] = id
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.IDs() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func compareIDs(a, b string) int {
	switch {
	case step.Less(a, b):
		return -1
	case step.Less(b, a):
		return 1
	}
	return 0
}
