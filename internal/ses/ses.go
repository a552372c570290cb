// Package ses implements L3's SES thin store (spec.md §4.4): verified
// identities as keyed CRUD entities, plus SendEmail, which only records
// acceptance and assigns a message ID — real delivery is a documented
// Non-goal.
package ses

import (
	"sync"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// Identity is one verified sender identity (email address or domain).
type Identity struct {
	Value          string
	VerifiedAt     string
	VerificationStatus string
}

// Key implements thinstore.Entity.
func (i *Identity) Key() string { return i.Value }

// SentEmail is one accepted SendEmail call.
type SentEmail struct {
	MessageID string
	Source    string
	ToAddrs   []string
	Subject   string
}

// Registry is the single in-memory SES store.
type Registry struct {
	store *thinstore.Store[Identity]

	mu   sync.Mutex
	sent []SentEmail
}

// NewRegistry constructs an empty SES registry.
func NewRegistry() *Registry {
	return &Registry{store: thinstore.New[Identity]("Identity not found")}
}

// VerifyIdentity registers value as verified immediately (real SES
// requires a challenge-response flow; this emulator auto-verifies).
func (r *Registry) VerifyIdentity(value, now string) *Identity {
	id := &Identity{Value: value, VerifiedAt: now, VerificationStatus: "Success"}
	r.store.Put(id)
	return id
}

// Get resolves an identity by its address/domain.
func (r *Registry) Get(value string) (*Identity, error) { return r.store.Get(value) }

// DeleteIdentity removes an identity; absent ones succeed silently.
func (r *Registry) DeleteIdentity(value string) { r.store.Delete(value) }

// ListIdentities returns every identity, sorted.
func (r *Registry) ListIdentities() []*Identity { return r.store.List() }

// SendEmail records an outgoing email's acceptance and assigns it a
// message ID; no delivery is attempted.
func (r *Registry) SendEmail(source string, to []string, subject string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := identity.NewID()
	r.sent = append(r.sent, SentEmail{MessageID: id, Source: source, ToAddrs: to, Subject: subject})
	return id
}
