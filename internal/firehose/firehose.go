// Package firehose implements L3's Firehose thin store (spec.md §4.4):
// delivery streams as keyed CRUD entities, plus a recording-only
// PutRecord/PutRecordBatch (real delivery to a destination is a
// documented Non-goal).
package firehose

import (
	"sync"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// DeliveryStream is one Firehose delivery stream.
type DeliveryStream struct {
	Name         string
	ARN          string
	CreatedAt    string
	recordCount  int
	recordsMutex sync.Mutex
}

// Key implements thinstore.Entity.
func (d *DeliveryStream) Key() string { return d.Name }

// Registry is the single in-memory Firehose delivery stream store.
type Registry struct {
	store    *thinstore.Store[DeliveryStream]
	identity identity.Identity
}

// NewRegistry constructs an empty Firehose registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{store: thinstore.New[DeliveryStream]("DeliveryStream not found"), identity: id}
}

// CreateDeliveryStream registers a new delivery stream.
func (r *Registry) CreateDeliveryStream(name, now string) *DeliveryStream {
	d := &DeliveryStream{Name: name, ARN: r.identity.ARN("firehose", "deliverystream/"+name), CreatedAt: now}
	r.store.Put(d)
	return d
}

// Get resolves a delivery stream by name.
func (r *Registry) Get(name string) (*DeliveryStream, error) { return r.store.Get(name) }

// Delete removes a delivery stream; absent ones succeed silently.
func (r *Registry) Delete(name string) { r.store.Delete(name) }

// List returns every delivery stream, sorted by name.
func (r *Registry) List() []*DeliveryStream { return r.store.List() }

// PutRecord records one record's acceptance without delivering it
// anywhere.
func (d *DeliveryStream) PutRecord(data []byte) string {
	d.recordsMutex.Lock()
	defer d.recordsMutex.Unlock()
	d.recordCount++
	return identity.NewID()
}

// PutRecordBatch records each of records' acceptance.
func (d *DeliveryStream) PutRecordBatch(records [][]byte) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = d.PutRecord(rec)
	}
	return ids
}
