// Package hcl provides the HCL implementation of the config.Loader interface.
// It is responsible for file discovery, parsing, and translating the schema
// blocks into the format-agnostic catalog model.
package hcl
