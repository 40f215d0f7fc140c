package scheduler

import (
	"container/heap"

	"github.com/ZacxDev/stepsim/step"
	"github.com/pkg/errors"
)

// Options configures a simulation. Every step takes Cost(id) + Overhead
// time units on one worker.
type Options struct {
	Workers  int
	Cost     step.CostFunc
	Overhead int
}

// Assignment records which worker ran a step and when.
type Assignment struct {
	Step   string
	Worker int
	Start  int
	Finish int
}

type Result struct {
	Elapsed     int
	Order       []string
	Assignments []Assignment
}

func (o Options) validate(g *Graph) error {
	if o.Workers <= 0 {
		return errors.Wrapf(ErrInvalidWorkers, "got %d", o.Workers)
	}
	if o.Overhead < 0 {
		return errors.Wrapf(ErrInvalidOverhead, "got %d", o.Overhead)
	}
	if o.Cost == nil {
		return ErrNilCost
	}
	for _, id := range g.IDs() {
		if c := o.Cost(id); c <= 0 {
			return errors.Wrapf(ErrInvalidCost, "step %s costs %d", id, c)
		}
	}
	return nil
}

// Simulate runs the graph on a pool of workers in simulated time and
// returns the makespan along with every step's assignment.
//
// Each round picks the worker that frees up first and moves the clock to
// that point, releases every step finished by then, and hands the smallest
// ready step to the worker. When nothing is ready the clock jumps to the
// next completion instead.
func Simulate(g *Graph, opts Options) (*Result, error) {
	if err := opts.validate(g); err != nil {
		return nil, err
	}

	walker := NewWalker(g)
	pool := NewWorkerPool(opts.Workers)
	var inFlight completionQueue
	now := 0

	res := &Result{
		Order:       make([]string, 0, g.Len()),
		Assignments: make([]Assignment, 0, g.Len()),
	}

	for !walker.Done() {
		worker := pool.NextAvailable()
		if worker.AvailableAt > now {
			now = worker.AvailableAt
		}

		for inFlight.Len() > 0 && inFlight.peek().finishedAt <= now {
			c := heap.Pop(&inFlight).(completion)
			if err := walker.Complete(c.id); err != nil {
				return nil, err
			}
		}

		if id, ok := walker.TakeNext(); ok {
			finish := now + opts.Cost(id) + opts.Overhead
			worker.AvailableAt = finish
			heap.Push(&inFlight, completion{id: id, finishedAt: finish})

			walker.Status().UpdateStatus(id, Running, worker.ID, now, finish)
			res.Order = append(res.Order, id)
			res.Assignments = append(res.Assignments, Assignment{
				Step:   id,
				Worker: worker.ID,
				Start:  now,
				Finish: finish,
			})
			continue
		}

		if inFlight.Len() > 0 {
			now = inFlight.peek().finishedAt
			continue
		}

		if !walker.Done() {
			return nil, walker.stallError()
		}
	}

	res.Elapsed = pool.FinalTime()
	return res, nil
}
