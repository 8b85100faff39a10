// Package catalog discovers and reads per-cluster source catalogs.
package catalog

import "rsz/internal/model"

// Reader supplies raw per-cluster catalogs. The fitting core performs no
// file IO of its own.
type Reader interface {
	// List returns the cluster names available, sorted.
	List() ([]string, error)
	// Read returns the raw catalog for one cluster.
	Read(name string) (*model.RawCatalog, error)
	Name() string
}
