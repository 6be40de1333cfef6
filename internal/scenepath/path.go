package scenepath

import (
	"fmt"
	"slices"
	"strings"
)

// String serializes the Path into its canonical representation. Segments
// without an explicit index are written bare.
func (p *Path) String() string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('/')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}
	return sb.String()
}

// IsRoot reports whether the path addresses the avatar root.
func (p *Path) IsRoot() bool {
	return p == nil || len(p.Segments) == 0
}

// Parent returns the path of the enclosing node. The parent of the root is
// the root.
func (p *Path) Parent() *Path {
	if p.IsRoot() {
		return &Path{}
	}
	return &Path{Segments: slices.Clone(p.Segments[:len(p.Segments)-1])}
}

// Child returns a new path with the given segment appended.
func (p *Path) Child(seg Segment) *Path {
	var segs []Segment
	if p != nil {
		segs = slices.Clone(p.Segments)
	}
	return &Path{Segments: append(segs, seg)}
}

// Join resolves rel against p. Both are plain paths; there is no support for
// `..` traversal.
func (p *Path) Join(rel *Path) *Path {
	out := &Path{}
	if p != nil {
		out.Segments = slices.Clone(p.Segments)
	}
	if rel != nil {
		out.Segments = append(out.Segments, rel.Segments...)
	}
	return out
}

// Equal checks for deep equality between two paths. A nil path equals the
// root path.
func (p *Path) Equal(other *Path) bool {
	if p.IsRoot() || other.IsRoot() {
		return p.IsRoot() && other.IsRoot()
	}
	return slices.Equal(p.Segments, other.Segments)
}

// HasPrefix reports whether p is prefix or a descendant of prefix.
func (p *Path) HasPrefix(prefix *Path) bool {
	if prefix.IsRoot() {
		return true
	}
	if p.IsRoot() || len(p.Segments) < len(prefix.Segments) {
		return false
	}
	return slices.Equal(p.Segments[:len(prefix.Segments)], prefix.Segments)
}
