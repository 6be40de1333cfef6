// Package model defines the value types the reactive property compiler works
// on: the identity of an animatable property, the conditions gating a
// mutation, the mutation rules themselves, and the per-property buckets that
// hold rules in priority order.
//
// Rules and conditions are plain values with field-wise equality. A bucket's
// rule order is load-bearing: when several rules are satisfied at once, the
// last one wins.
package model
