/*
Package scenepath provides a structured representation for hierarchy paths
inside an avatar, based on the canonical format `path`.

The format is a slash-separated sequence of node names relative to the
avatar root, e.g. `Armature/Hips/Hat`. When several siblings share a name,
a segment may carry a zero-based sibling index: `Accessories/Ribbon[1]`.

This package enforces the path schema and centralizes all formatting and
parsing logic so that node identity never depends on ad-hoc string handling.
*/
package scenepath
