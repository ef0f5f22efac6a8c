// Package inmemorycatalog provides a thread-safe, in-memory implementation
// of the catalog.Store interface. It is designed for catalogs that fit
// comfortably in memory (tens to low hundreds of courses) and are persisted
// as whole documents by an external loader.
package inmemorycatalog
