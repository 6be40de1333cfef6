// Package testutil runs scene files end to end through the application for
// integration tests.
package testutil
