// Package cognito implements L3's Cognito thin store (spec.md §4.4):
// user pools keyed by a generated ID with a secondary name→id index,
// plus a per-pool user store. Federation, hosted UI, MFA, and token
// issuance are documented Non-goals; no authentication action (such as
// AdminInitiateAuth) is implemented.
package cognito

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// UserPool is one Cognito user pool.
type UserPool struct {
	ID        string
	Name      string
	ARN       string
	CreatedAt string

	mu    sync.Mutex
	users map[string]*User
}

// Key implements thinstore.Entity.
func (p *UserPool) Key() string { return p.ID }

// User is one user within a pool.
type User struct {
	Username   string
	Attributes map[string]string
	UserStatus string
	CreatedAt  string
}

// Registry is the single in-memory Cognito store.
type Registry struct {
	store    *thinstore.Store[UserPool]
	identity identity.Identity

	mu       sync.Mutex
	nameToID map[string]string
}

// NewRegistry constructs an empty Cognito registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{
		store:    thinstore.New[UserPool]("User pool does not exist"),
		identity: id,
		nameToID: map[string]string{},
	}
}

// CreatePool registers a new user pool, generating its ID.
func (r *Registry) CreatePool(name, now string) *UserPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := identity.NewID()
	pool := &UserPool{
		ID:        id,
		Name:      name,
		ARN:       r.identity.ARN("cognito-idp", "userpool/"+id),
		CreatedAt: now,
		users:     map[string]*User{},
	}
	r.store.Put(pool)
	r.nameToID[name] = id
	return pool
}

// Get resolves a pool by its ID.
func (r *Registry) Get(id string) (*UserPool, error) { return r.store.Get(id) }

// GetByName resolves a pool through the secondary name index.
func (r *Registry) GetByName(name string) (*UserPool, error) {
	r.mu.Lock()
	id, ok := r.nameToID[name]
	r.mu.Unlock()
	if !ok {
		return r.store.Get(name) // surfaces the store's NotFound message
	}
	return r.store.Get(id)
}

// DeletePool removes a pool; absent ones succeed silently.
func (r *Registry) DeletePool(id string) {
	if pool, err := r.store.Get(id); err == nil {
		r.mu.Lock()
		delete(r.nameToID, pool.Name)
		r.mu.Unlock()
	}
	r.store.Delete(id)
}

// ListPools returns every pool, sorted by ID.
func (r *Registry) ListPools() []*UserPool { return r.store.List() }

// CreateUser adds a confirmed user to the pool.
func (p *UserPool) CreateUser(username string, attrs map[string]string, now string) *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := &User{Username: username, Attributes: attrs, UserStatus: "CONFIRMED", CreatedAt: now}
	p.users[username] = u
	return u
}

// GetUser resolves a user by username.
func (p *UserPool) GetUser(username string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	if !ok {
		return nil, errUserNotFound(username)
	}
	return u, nil
}

// DeleteUser removes a user; absent ones succeed silently.
func (p *UserPool) DeleteUser(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, username)
}

// ListUsers returns every user in the pool, sorted by username.
func (p *UserPool) ListUsers() []*User {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*User, 0, len(p.users))
	for _, u := range p.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
