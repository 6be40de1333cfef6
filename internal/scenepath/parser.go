package scenepath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex parses a single segment of a path, e.g. `Hat` or `Ribbon[1]`.
// Names may contain spaces and dots, which are common in authored hierarchies.
var segmentRegex = regexp.MustCompile(`^([^/\[\]]+?)(?:\[(\d+)\])?$`)

// isValidSegmentName rejects names that would be ambiguous as path elements.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || strings.TrimSpace(name) == "" {
		return false
	}
	return true
}

// Parse creates a Path by parsing its canonical string representation. An
// empty string parses to the root path.
func Parse(raw string) (*Path, error) {
	p := &Path{}
	if raw == "" {
		return p, nil
	}

	for _, segmentStr := range strings.Split(raw, "/") {
		if segmentStr == "" {
			return nil, fmt.Errorf("path %q contains an empty segment", raw)
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		name := matches[1]
		if !isValidSegmentName(name) {
			return nil, fmt.Errorf("invalid segment name: %q", name)
		}

		segment := NewSegment(name)
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to regex `\d+`
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		p.Segments = append(p.Segments, segment)
	}

	return p, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and package-level fixtures.
func MustParse(raw string) *Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}
