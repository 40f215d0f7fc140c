package scheduler

// Worker is free from AvailableAt onwards.
type Worker struct {
	ID          int
	AvailableAt int
}

// WorkerPool is a fixed set of interchangeable workers. It is owned by a
// single simulation run.
type WorkerPool struct {
	workers []Worker
}

func NewWorkerPool(n int) *WorkerPool {
	p := &WorkerPool{workers: make([]Worker, n)}
	for i := range p.workers {
		p.workers[i].ID = i
	}
	return p
}

// NextAvailable returns the worker that frees up first, even if it is still
// busy. Ties go to the lowest worker ID.
func (p *WorkerPool) NextAvailable() *Worker {
	next := &p.workers[0]
	for i := 1; i < len(p.workers); i++ {
		if p.workers[i].AvailableAt < next.AvailableAt {
			next = &p.workers[i]
		}
	}
	return next
}

// FinalTime is the time at which the last worker goes idle.
func (p *WorkerPool) FinalTime() int {
	final := 0
	for _, w := range p.workers {
		if w.AvailableAt > final {
			final = w.AvailableAt
		}
	}
	return final
}
