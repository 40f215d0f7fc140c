package scheduler

import (
	"container/heap"

	"github.com/ZacxDev/stepsim/step"
)

// readyQueue is a min-heap of step identifiers ordered by step.Less.
type readyQueue []string

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return step.Less(q[i], q[j]) }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) {
	*q = append(*q, x.(string))
}

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	id := old[n-1]
	*q = old[:n-1]
	return id
}

// completion is a step in flight on a worker.
type completion struct {
	id         string
	finishedAt int
}

// completionQueue is a min-heap ordered by finish time. Equal finish times
// are released in identifier order so runs are reproducible.
type completionQueue []completion

func (q completionQueue) Len() int { return len(q) }

func (q completionQueue) Less(i, j int) bool {
	if q[i].finishedAt != q[j].finishedAt {
		return q[i].finishedAt < q[j].finishedAt
	}
	return step.Less(q[i].id, q[j].id)
}

func (q completionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *completionQueue) Push(x any) {
	*q = append(*q, x.(completion))
}

func (q *completionQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

func (q completionQueue) peek() completion {
	return q[0]
}

var (
	_ heap.Interface = (*readyQueue)(nil)
	_ heap.Interface = (*completionQueue)(nil)
)
