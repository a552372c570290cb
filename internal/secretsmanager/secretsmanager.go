// Package secretsmanager implements L3's Secrets Manager thin store
// (spec.md §4.4): named secrets whose current value is stored through
// the shared simulated encrypt/decrypt convention (internal/simcrypto),
// plus version tracking for PutSecretValue.
package secretsmanager

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/simcrypto"
)

const serviceKeyID = "alias/aws/secretsmanager"

// Secret is one named secret; its value is held only as a simcrypto
// ciphertext blob.
type Secret struct {
	Name        string
	ARN         string
	Description string
	CreatedAt   string
	ciphertext  string
	versionID   string
}

// Registry is the single in-memory Secrets Manager store.
type Registry struct {
	mu       sync.RWMutex
	secrets  map[string]*Secret
	identity identity.Identity
}

// NewRegistry constructs an empty Secrets Manager registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{secrets: map[string]*Secret{}, identity: id}
}

// CreateSecret registers a new secret with an initial value; AlreadyExists
// if the name is already taken.
func (r *Registry) CreateSecret(name, description, secretString, now string) (*Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.secrets[name]; ok {
		return nil, apperr.New(apperr.AlreadyExists, "The operation failed because the secret "+name+" already exists")
	}
	s := &Secret{
		Name:        name,
		ARN:         r.identity.ARN("secretsmanager", "secret:"+name),
		Description: description,
		CreatedAt:   now,
		ciphertext:  simcrypto.Encrypt(serviceKeyID, []byte(secretString)),
		versionID:   identity.NewID(),
	}
	r.secrets[name] = s
	return s, nil
}

// Get resolves a secret by name, NotFound if absent.
func (r *Registry) Get(name string) (*Secret, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.secrets[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Secrets Manager can't find the specified secret")
	}
	return s, nil
}

// GetSecretValue decrypts the secret's current value.
func (r *Registry) GetSecretValue(name string) (value, versionID string, err error) {
	s, err := r.Get(name)
	if err != nil {
		return "", "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, plaintext, err := simcrypto.Decrypt(s.ciphertext)
	if err != nil {
		return "", "", err
	}
	return string(plaintext), s.versionID, nil
}

// PutSecretValue replaces a secret's value and stamps a new version ID.
func (r *Registry) PutSecretValue(name, secretString string) (versionID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.secrets[name]
	if !ok {
		return "", apperr.New(apperr.NotFound, "Secrets Manager can't find the specified secret")
	}
	s.ciphertext = simcrypto.Encrypt(serviceKeyID, []byte(secretString))
	s.versionID = identity.NewID()
	return s.versionID, nil
}

// DeleteSecret removes a secret; absent secrets succeed silently (real
// Secrets Manager has a recovery window; that staged-deletion behavior
// is out of scope here).
func (r *Registry) DeleteSecret(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.secrets, name)
}

// ListSecrets returns every secret, sorted by name.
func (r *Registry) ListSecrets() []*Secret {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Secret, 0, len(r.secrets))
	for _, s := range r.secrets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
