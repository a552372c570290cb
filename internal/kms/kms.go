// Package kms implements L3's KMS thin store (spec.md §4.4): customer
// master keys and the shared simulated Encrypt/Decrypt convention
// (internal/simcrypto).
package kms

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/simcrypto"
)

// Key is one customer master key.
type Key struct {
	KeyID       string
	ARN         string
	Description string
	CreatedAt   string
	Enabled     bool
}

// Registry is the single in-memory KMS key store.
type Registry struct {
	mu       sync.RWMutex
	keys     map[string]*Key
	identity identity.Identity
}

// NewRegistry constructs an empty KMS registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{keys: map[string]*Key{}, identity: id}
}

// CreateKey mints a new key with a generated ID.
func (r *Registry) CreateKey(description, now string) *Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := identity.NewID()
	k := &Key{
		KeyID:       id,
		ARN:         r.identity.ARN("kms", "key/"+id),
		Description: description,
		CreatedAt:   now,
		Enabled:     true,
	}
	r.keys[id] = k
	return k
}

// Get resolves a key by ID, NotFound if absent. Disabled keys are
// returned as well; Encrypt and Decrypt check Enabled themselves.
func (r *Registry) Get(keyID string) (*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[keyID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Key '"+keyID+"' does not exist")
	}
	return k, nil
}

// ScheduleKeyDeletion disables a key in place (spec.md scopes out the
// real multi-day waiting-period semantics; disabling is enough to make
// it unusable for Encrypt/Decrypt).
func (r *Registry) ScheduleKeyDeletion(keyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[keyID]
	if !ok {
		return apperr.New(apperr.NotFound, "Key '"+keyID+"' does not exist")
	}
	k.Enabled = false
	return nil
}

// ListKeys returns every key, sorted by ID.
func (r *Registry) ListKeys() []*Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Key, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeyID < out[j].KeyID })
	return out
}

// Encrypt simulates envelope encryption via simcrypto.
func (r *Registry) Encrypt(keyID string, plaintext []byte) (string, error) {
	k, err := r.Get(keyID)
	if err != nil {
		return "", err
	}
	if !k.Enabled {
		return "", apperr.New(apperr.InvalidArgument, "Key '"+keyID+"' is disabled")
	}
	return simcrypto.Encrypt(keyID, plaintext), nil
}

// Decrypt recovers the original keyID/plaintext from a ciphertext blob.
func (r *Registry) Decrypt(blob string) (keyID string, plaintext []byte, err error) {
	keyID, plaintext, err = simcrypto.Decrypt(blob)
	if err != nil {
		return "", nil, err
	}
	k, err := r.Get(keyID)
	if err != nil {
		return "", nil, err
	}
	if !k.Enabled {
		return "", nil, apperr.New(apperr.InvalidArgument, "Key '"+keyID+"' is disabled")
	}
	return keyID, plaintext, nil
}
