// Package integration_tests compiles complete scene directories through the
// application and checks the resulting reports.
package integration_tests
