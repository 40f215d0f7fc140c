package scheduler

import (
	"github.com/ZacxDev/stepsim/step"
	"github.com/pkg/errors"
)

// PathResult is the outcome of a critical path analysis with unlimited
// workers. Length is a lower bound on any simulated makespan.
type PathResult struct {
	Length int
	Path   []string
	Slack  map[string]int
}

// CriticalPath runs a forward and backward pass over the canonical order.
func CriticalPath(g *Graph, cost step.CostFunc, overhead int) (*PathResult, error) {
	if cost == nil {
		return nil, ErrNilCost
	}
	order, err := Order(g)
	if err != nil {
		return nil, errors.Wrap(err, "critical path needs an acyclic graph")
	}

	duration := make(map[string]int, len(order))
	for _, id := range order {
		duration[id] = cost(id) + overhead
	}

	// Forward pass: earliest start/finish
	es := make(map[string]int, len(order))
	ef := make(map[string]int, len(order))
	length := 0
	for _, id := range order {
		start := 0
		for _, pred := range g.steps[id].Predecessors {
			if ef[pred] > start {
				start = ef[pred]
			}
		}
		es[id] = start
		ef[id] = start + duration[id]
		if ef[id] > length {
			length = ef[id]
		}
	}

	// Backward pass: latest start
	ls := make(map[string]int, len(order))
	res := &PathResult{
		Length: length,
		Slack:  make(map[string]int, len(order)),
	}
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		finish := length
		for _, succ := range g.steps[id].Successors {
			if ls[succ] < finish {
				finish = ls[succ]
			}
		}
		ls[id] = finish - duration[id]
		res.Slack[id] = ls[id] - es[id]
	}

	// Follow zero-slack steps from the earliest root, smallest id first
	cur := ""
	for _, id := range order {
		if es[id] == 0 && res.Slack[id] == 0 {
			cur = id
			break
		}
	}
	for cur != "" {
		res.Path = append(res.Path, cur)
		next := ""
		for _, succ := range g.steps[cur].Successors {
			if res.Slack[succ] == 0 && es[succ] == ef[cur] && (next == "" || step.Less(succ, next)) {
				next = succ
			}
		}
		cur = next
	}

	return res, nil
}
