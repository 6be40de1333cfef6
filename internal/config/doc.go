// Package config defines the format-agnostic scene document for the
// application, along with the Loader interface for reading it from various
// sources.
//
// The `config.Model` is the single source of truth for the `scene` package,
// which turns it into the runtime hierarchy the compiler walks. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
