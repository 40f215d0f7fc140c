package scheduler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidWorkers  = errors.New("worker count must be positive")
	ErrInvalidOverhead = errors.New("overhead must not be negative")
	ErrNilCost         = errors.New("cost function is required")
	ErrInvalidCost     = errors.New("step cost must be positive")
	ErrUnknownStep     = errors.New("unknown step")
	ErrNotRunning      = errors.New("step is not running")
	ErrStalled         = errors.New("scheduler stalled")
)

// StallError is returned when the ready set drains while steps remain,
// which only happens when the input contains a cycle.
type StallError struct {
	Remaining []string
	Cycle     []string
}

func (e *StallError) Error() string {
	msg := fmt.Sprintf("%v: %d step(s) never became ready: %s", ErrStalled, len(e.Remaining), strings.Join(e.Remaining, ", "))
	if len(e.Cycle) > 0 {
		msg += fmt.Sprintf(" (cycle %s)", strings.Join(e.Cycle, " -> "))
	}
	return msg
}

func (e *StallError) Is(target error) bool {
	return target == ErrStalled
}
