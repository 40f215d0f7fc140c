package step

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const edgeFormat = "Step %s must be finished before step %s can begin."

// ParseEdge reads a single "Step X must be finished before step Y can begin." line.
func ParseEdge(line string) (Edge, error) {
	var before, after string

	// Sscanf ignores input past the format, so the line must also read back
	// exactly once whitespace runs are collapsed.
	n, err := fmt.Sscanf(strings.TrimSpace(line), edgeFormat, &before, &after)
	if err != nil || n != 2 || strings.Join(strings.Fields(line), " ") != fmt.Sprintf(edgeFormat, before, after) {
		return Edge{}, errors.Errorf("malformed dependency line %q", line)
	}
	if before == after {
		return Edge{}, errors.Errorf("step %s cannot depend on itself", before)
	}

	return Edge{Before: before, After: after}, nil
}

// ParseEdges reads one edge per non-blank line.
func ParseEdges(r io.Reader) ([]Edge, error) {
	var edges []Edge

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		edge, err := ParseEdge(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		edges = append(edges, edge)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read dependency list")
	}

	return edges, nil
}
