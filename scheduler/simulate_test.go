package scheduler

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/ZacxDev/stepsim/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateExample(t *testing.T) {
	res, err := Simulate(NewGraph(exampleEdges()), Options{
		Workers:  2,
		Cost:     step.AlphabetCost(0),
		Overhead: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, 15, res.Elapsed)
	assert.Equal(t, []string{"C", "A", "F", "B", "D", "E"}, res.Order)
	assert.Equal(t, []Assignment{
		{Step: "C", Worker: 0, Start: 0, Finish: 3},
		{Step: "A", Worker: 1, Start: 3, Finish: 4},
		{Step: "F", Worker: 0, Start: 3, Finish: 9},
		{Step: "B", Worker: 1, Start: 4, Finish: 6},
		{Step: "D", Worker: 1, Start: 6, Finish: 10},
		{Step: "E", Worker: 0, Start: 10, Finish: 15},
	}, res.Assignments)
}

func TestSimulateCanonicalOverhead(t *testing.T) {
	res, err := Simulate(NewGraph(exampleEdges()), Options{
		Workers:  5,
		Cost:     step.AlphabetCost(0),
		Overhead: 60,
	})
	require.NoError(t, err)

	// C -> A -> D -> E is the longest chain once every step costs 60 more
	assert.Equal(t, 63+61+64+65, res.Elapsed)
}

func TestSimulateSingleWorkerSerializes(t *testing.T) {
	f := func(pairs []uint16, overhead uint8) bool {
		g := NewGraph(randomDAG(pairs))
		cost := step.AlphabetCost(1)
		res, err := Simulate(g, Options{Workers: 1, Cost: cost, Overhead: int(overhead)})
		if err != nil {
			return false
		}

		order, err := Order(g)
		if err != nil {
			return false
		}
		sum := 0
		for _, id := range order {
			sum += cost(id) + int(overhead)
		}
		return res.Elapsed == sum && equalStrings(res.Order, order)
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSimulateSingleStep(t *testing.T) {
	for workers := 1; workers <= 4; workers++ {
		g := NewGraph(nil)
		g.AddStep("D")

		res, err := Simulate(g, Options{Workers: workers, Cost: step.AlphabetCost(0), Overhead: 7})
		require.NoError(t, err)
		assert.Equal(t, 4+7, res.Elapsed, "workers=%d", workers)
	}
}

func TestSimulateEmpty(t *testing.T) {
	res, err := Simulate(NewGraph(nil), Options{Workers: 3, Cost: step.AlphabetCost(60)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Elapsed)
	assert.Empty(t, res.Assignments)
}

func TestSimulateInvalidOptions(t *testing.T) {
	g := NewGraph(exampleEdges())

	cases := []struct {
		name string
		opts Options
		want error
	}{
		{"zero workers", Options{Workers: 0, Cost: step.AlphabetCost(0)}, ErrInvalidWorkers},
		{"negative workers", Options{Workers: -2, Cost: step.AlphabetCost(0)}, ErrInvalidWorkers},
		{"negative overhead", Options{Workers: 1, Cost: step.AlphabetCost(0), Overhead: -1}, ErrInvalidOverhead},
		{"nil cost", Options{Workers: 1}, ErrNilCost},
		{"zero cost", Options{Workers: 1, Cost: func(string) int { return 0 }}, ErrInvalidCost},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Simulate(g, tc.opts)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestSimulateInvalidIdentifierCost(t *testing.T) {
	g := NewGraph([]step.Edge{{Before: "A", After: "7"}})

	_, err := Simulate(g, Options{Workers: 1, Cost: step.AlphabetCost(0)})
	assert.True(t, errors.Is(err, ErrInvalidCost))
}

func TestSimulateStalled(t *testing.T) {
	g := NewGraph([]step.Edge{
		{Before: "A", After: "B"},
		{Before: "C", After: "D"},
		{Before: "D", After: "C"},
	})

	res, err := Simulate(g, Options{Workers: 2, Cost: step.AlphabetCost(0)})
	assert.Nil(t, res)
	require.True(t, errors.Is(err, ErrStalled))

	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.Equal(t, []string{"C", "D"}, stall.Remaining)
}

func TestSimulateDeterministic(t *testing.T) {
	f := func(pairs []uint16, workers uint8) bool {
		edges := randomDAG(pairs)
		opts := Options{Workers: int(workers%6) + 1, Cost: step.AlphabetCost(2), Overhead: 3}

		a, errA := Simulate(NewGraph(edges), opts)
		b, errB := Simulate(NewGraph(edges), opts)
		if errA != nil || errB != nil {
			return false
		}
		return a.Elapsed == b.Elapsed && equalAssignments(a.Assignments, b.Assignments)
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// The makespan never beats the critical path and never exceeds running
// every step back to back.
func TestSimulateBounds(t *testing.T) {
	f := func(pairs []uint16, workers uint8) bool {
		g := NewGraph(randomDAG(pairs))
		cost := step.AlphabetCost(0)
		res, err := Simulate(g, Options{Workers: int(workers%6) + 1, Cost: cost, Overhead: 5})
		if err != nil {
			return false
		}
		cp, err := CriticalPath(g, cost, 5)
		if err != nil {
			return false
		}

		sum := 0
		for _, id := range g.IDs() {
			sum += cost(id) + 5
		}
		return res.Elapsed >= cp.Length && res.Elapsed <= sum
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// Workers never overlap and every step starts after its dependencies finish.
func TestSimulateAssignmentsConsistent(t *testing.T) {
	f := func(pairs []uint16, workers uint8) bool {
		g := NewGraph(randomDAG(pairs))
		n := int(workers%4) + 1
		res, err := Simulate(g, Options{Workers: n, Cost: step.AlphabetCost(0), Overhead: 1})
		if err != nil || len(res.Assignments) != g.Len() {
			return false
		}

		byStep := make(map[string]Assignment)
		busyUntil := make(map[int]int)
		for _, a := range res.Assignments {
			if a.Worker < 0 || a.Worker >= n || a.Start < busyUntil[a.Worker] {
				return false
			}
			busyUntil[a.Worker] = a.Finish
			byStep[a.Step] = a
		}
		for _, id := range g.IDs() {
			s, _ := g.Get(id)
			for _, pred := range s.Predecessors {
				if byStep[id].Start < byStep[pred].Finish {
					return false
				}
			}
		}
		return true
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSimulateMoreWorkersOnIndependentSteps(t *testing.T) {
	g := NewGraph(nil)
	for _, id := range []string{"A", "B", "C", "D"} {
		g.AddStep(id)
	}

	prev := 0
	for workers := 4; workers >= 1; workers-- {
		res, err := Simulate(g, Options{Workers: workers, Cost: step.AlphabetCost(0), Overhead: 10})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Elapsed, prev, "workers=%d", workers)
		prev = res.Elapsed
	}
	assert.Equal(t, 11+12+13+14, prev)
}

func TestSimulateHigherCostNeverFaster(t *testing.T) {
	g := NewGraph(exampleEdges())

	prev := 0
	for base := 0; base <= 60; base += 10 {
		res, err := Simulate(g, Options{Workers: 2, Cost: step.AlphabetCost(base)})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Elapsed, prev, "base=%d", base)
		prev = res.Elapsed
	}
}

func TestSimulateRecordsStatus(t *testing.T) {
	g := NewGraph(exampleEdges())
	w := NewWalker(g)
	id, _ := w.TakeNext()
	w.Status().UpdateStatus(id, Running, 1, 0, 3)

	es, ok := w.Status().Get(id)
	require.True(t, ok)
	assert.Equal(t, ExecutionStatus{Status: Running, Worker: 1, StartTime: 0, EndTime: 3}, es)
	assert.Equal(t, 1, w.Status().Count(Running))
	assert.Equal(t, 0, w.Status().Count(Ready))
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalAssignments(a, b []Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
