// Package syncgraph propagates blendshape edits along synchronization
// bindings.
//
// A binding declared on a destination renderer mirrors a shape of a source
// renderer onto one of its own shapes. The bindings form a directed graph
// over (renderer, shape) pairs that may contain chains and cycles. Every
// authored rule on a source pair is cloned onto each pair reachable from it,
// except delete rules: deleting a shared base shape must not delete an
// independently authored counterpart.
package syncgraph
