// Package config defines the format-agnostic document model for a curriculum
// catalog, along with the Loader interface for reading it from various
// sources.
//
// The `config.Model` is what every concrete loader (JSON data directory, HCL
// catalog files) produces and what the catalog package consumes. Concrete
// implementations of the interface are provided in separate packages.
package config
