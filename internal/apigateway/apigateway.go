// Package apigateway implements L3's API Gateway thin store (spec.md
// §4.4): REST APIs as keyed CRUD entities. Actual HTTP routing through
// a deployed API is a documented Non-goal — only the management plane
// (create/get/list/delete REST APIs) is emulated.
package apigateway

import (
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// RestAPI is one API Gateway REST API.
type RestAPI struct {
	ID          string
	Name        string
	Description string
	CreatedAt   string
}

// Key implements thinstore.Entity.
func (a *RestAPI) Key() string { return a.ID }

// Registry is the single in-memory API Gateway store.
type Registry struct {
	store    *thinstore.Store[RestAPI]
	identity identity.Identity
}

// NewRegistry constructs an empty API Gateway registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{store: thinstore.New[RestAPI]("REST API not found"), identity: id}
}

// CreateRestAPI registers a new REST API with a generated ID.
func (r *Registry) CreateRestAPI(name, description, now string) *RestAPI {
	api := &RestAPI{ID: identity.NewID(), Name: name, Description: description, CreatedAt: now}
	r.store.Put(api)
	return api
}

// Get resolves a REST API by ID.
func (r *Registry) Get(id string) (*RestAPI, error) { return r.store.Get(id) }

// Delete removes a REST API; absent ones succeed silently.
func (r *Registry) Delete(id string) { r.store.Delete(id) }

// List returns every REST API, sorted by ID.
func (r *Registry) List() []*RestAPI { return r.store.List() }
