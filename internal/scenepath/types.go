package scenepath

// Segment is a single component of a path, e.g. `name` or `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no sibling index is present.
}

// NewSegment creates a new path segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewSegmentWithIndex creates a new path segment that includes a sibling index.
func NewSegmentWithIndex(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the segment has an explicit sibling index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Path is the structured form of a hierarchy path. The zero value is the
// avatar root itself.
type Path struct {
	Segments []Segment
}
