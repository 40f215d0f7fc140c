package scheduler

import (
	"container/heap"

	"github.com/pkg/errors"
)

// Walker tracks which steps of a graph are ready to run. Taking a step off
// the ready set and completing it are separate operations, so a step can be
// in flight for a while before its successors are released.
type Walker struct {
	graph     *Graph
	depCount  map[string]int
	ready     readyQueue
	status    StatusManager
	completed int
}

func NewWalker(g *Graph) *Walker {
	w := &Walker{
		graph:    g,
		depCount: make(map[string]int),
		status:   NewStatusManager(),
	}

	for _, id := range g.IDs() {
		s := g.steps[id]
		if len(s.Predecessors) == 0 {
			w.ready = append(w.ready, id)
			w.status.SetStatus(id, Ready)
			continue
		}
		w.depCount[id] = len(s.Predecessors)
		w.status.SetStatus(id, Blocked)
	}
	heap.Init(&w.ready)

	return w
}

// TakeNext removes the smallest ready step and marks it running.
func (w *Walker) TakeNext() (string, bool) {
	if w.ready.Len() == 0 {
		return "", false
	}
	id := heap.Pop(&w.ready).(string)
	w.status.SetStatus(id, Running)
	return id, true
}

// Complete marks a running step as completed and moves every successor
// whose last dependency this was into the ready set.
func (w *Walker) Complete(id string) error {
	es, ok := w.status.Get(id)
	if !ok {
		return errors.Wrapf(ErrUnknownStep, "step %s", id)
	}
	if es.Status != Running {
		return errors.Wrapf(ErrNotRunning, "step %s is %s", id, es.Status)
	}

	s, err := w.graph.Get(id)
	if err != nil {
		return err
	}
	for _, next := range s.Successors {
		w.depCount[next]--
		if w.depCount[next] == 0 {
			delete(w.depCount, next)
			heap.Push(&w.ready, next)
			w.status.SetStatus(next, Ready)
		}
	}

	w.status.SetStatus(id, Completed)
	w.completed++
	return nil
}

// Done reports whether every step of the graph has been completed.
func (w *Walker) Done() bool {
	return w.completed == w.graph.Len()
}

func (w *Walker) Remaining() int {
	return w.graph.Len() - w.completed
}

func (w *Walker) ReadyLen() int {
	return w.ready.Len()
}

// Blocked returns the sorted steps still waiting on a dependency.
func (w *Walker) Blocked() []string {
	return w.status.WithStatus(Blocked)
}

func (w *Walker) Status() StatusManager {
	return w.status
}

func (w *Walker) stallError() *StallError {
	var remaining []string
	for _, id := range w.graph.IDs() {
		if es, _ := w.status.Get(id); es.Status != Completed {
			remaining = append(remaining, id)
		}
	}
	return &StallError{
		Remaining: remaining,
		Cycle:     w.graph.DetectCycle(),
	}
}

// Order runs the graph with a single worker and no notion of time: the
// smallest ready step is always taken next and completed immediately. The
// result is the lexicographically smallest topological order. On a cycle
// the partial order is returned together with a *StallError.
func Order(g *Graph) ([]string, error) {
	w := NewWalker(g)
	order := make([]string, 0, g.Len())

	for {
		id, ok := w.TakeNext()
		if !ok {
			break
		}
		order = append(order, id)
		if err := w.Complete(id); err != nil {
			return order, err
		}
	}

	if !w.Done() {
		return order, w.stallError()
	}
	return order, nil
}
