// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It layers
// CLI flags over the config file and environment into the application's
// configuration.
package cli
