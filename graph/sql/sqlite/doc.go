// Package sqlite registers the SQLite dialect. It requires cgo; without cgo
// the package is empty and the dialect is not registered.
package sqlite
