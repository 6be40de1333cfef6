// Package hcl provides the concrete HCL implementation of the scene loading
// interface defined in the `config` package. It is responsible for file
// discovery, parsing, ordered block traversal and cty-to-Go value
// conversion.
package hcl
