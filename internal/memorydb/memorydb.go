// Package memorydb implements L3's MemoryDB thin store (spec.md §4.4):
// clusters as keyed CRUD entities with tags. Actual Redis-protocol data
// operations are out of scope; only cluster lifecycle management is
// emulated.
package memorydb

import (
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// Cluster is one MemoryDB cluster.
type Cluster struct {
	Name      string
	ARN       string
	NodeType  string
	Status    string
	CreatedAt string
}

// Key implements thinstore.Entity.
func (c *Cluster) Key() string { return c.Name }

// Registry is the single in-memory MemoryDB cluster store.
type Registry struct {
	store    *thinstore.Store[Cluster]
	identity identity.Identity
}

// NewRegistry constructs an empty MemoryDB registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{store: thinstore.New[Cluster]("Cluster not found"), identity: id}
}

// CreateCluster registers a new cluster.
func (r *Registry) CreateCluster(name, nodeType, now string) *Cluster {
	c := &Cluster{
		Name:      name,
		ARN:       r.identity.ARN("memorydb", "cluster/"+name),
		NodeType:  nodeType,
		Status:    "available",
		CreatedAt: now,
	}
	r.store.Put(c)
	return c
}

// Get resolves a cluster by name.
func (r *Registry) Get(name string) (*Cluster, error) { return r.store.Get(name) }

// Delete removes a cluster; absent ones succeed silently.
func (r *Registry) Delete(name string) { r.store.Delete(name) }

// List returns every cluster, sorted by name.
func (r *Registry) List() []*Cluster { return r.store.List() }

// Tag attaches tags to a cluster.
func (r *Registry) Tag(name string, tags map[string]string) error { return r.store.Tag(name, tags) }

// Untag removes tag keys from a cluster.
func (r *Registry) Untag(name string, keys []string) error { return r.store.Untag(name, keys) }

// Tags returns a cluster's tags.
func (r *Registry) Tags(name string) (map[string]string, error) { return r.store.Tags(name) }
