package scheduler

import (
	"github.com/ZacxDev/stepsim/step"
)

// exampleEdges is the worked example from the puzzle statement.
func exampleEdges() []step.Edge {
	return []step.Edge{
		{Before: "C", After: "A"},
		{Before: "C", After: "F"},
		{Before: "A", After: "B"},
		{Before: "A", After: "D"},
		{Before: "B", After: "E"},
		{Before: "D", After: "E"},
		{Before: "F", After: "E"},
	}
}

// ranking is a fixed shuffle of the letters A-J so that alphabetical order
// is not automatically a topological order of generated graphs.
var ranking = []string{"D", "J", "A", "G", "C", "I", "B", "F", "H", "E"}

// randomDAG turns arbitrary pairs into an acyclic edge list: every edge
// points from an earlier entry of ranking to a later one.
func randomDAG(pairs []uint16) []step.Edge {
	var edges []step.Edge
	for _, p := range pairs {
		i := int(p>>8) % len(ranking)
		j := int(p&0xff) % len(ranking)
		if i == j {
			continue
		}
		if i > j {
			i, j = j, i
		}
		edges = append(edges, step.Edge{Before: ranking[i], After: ranking[j]})
	}
	return edges
}
