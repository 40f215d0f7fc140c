package step

// Step is a single unit of work in the dependency graph. Successors and
// Predecessors hold step identifiers, in the order the edges were added.
type Step struct {
	ID           string
	Successors   []string
	Predecessors []string
}

// Edge means Before must be completed before After can start.
type Edge struct {
	Before string
	After  string
}

// Less orders step identifiers for the ready queue.
func Less(a, b string) bool {
	return a < b
}
