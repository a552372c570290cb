// Package ssm implements L3's SSM Parameter Store thin store (spec.md
// §4.4): named parameters with a type (String, StringList,
// SecureString); SecureString values are held through the shared
// simulated encrypt/decrypt convention (internal/simcrypto).
package ssm

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/simcrypto"
)

const defaultKeyID = "alias/aws/ssm"

// Parameter is one named SSM parameter; SecureString values are stored
// only as a simcrypto ciphertext blob.
type Parameter struct {
	Name      string
	Type      string
	Value     string
	keyID     string
	Version   int64
	UpdatedAt string
}

// Registry is the single in-memory SSM parameter store.
type Registry struct {
	mu         sync.RWMutex
	parameters map[string]*Parameter
}

// NewRegistry constructs an empty SSM registry.
func NewRegistry() *Registry {
	return &Registry{parameters: map[string]*Parameter{}}
}

// PutParameter stores name under type/value, replacing any prior value
// and incrementing its version.
func (r *Registry) PutParameter(name, paramType, value, now string) (*Parameter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, existed := r.parameters[name]
	if !existed {
		p = &Parameter{Name: name}
	}
	p.Type = paramType
	p.UpdatedAt = now
	p.Version++
	if paramType == "SecureString" {
		p.keyID = defaultKeyID
		p.Value = simcrypto.Encrypt(defaultKeyID, []byte(value))
	} else {
		p.keyID = ""
		p.Value = value
	}
	r.parameters[name] = p
	return p, nil
}

// GetParameter resolves name, decrypting SecureString values when
// withDecryption is true (otherwise the ciphertext blob is returned
// unchanged, matching real SSM's behavior for withDecryption=false).
func (r *Registry) GetParameter(name string, withDecryption bool) (*Parameter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parameters[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Parameter "+name+" not found")
	}
	if p.Type != "SecureString" || !withDecryption {
		return p, nil
	}
	_, plaintext, err := simcrypto.Decrypt(p.Value)
	if err != nil {
		return nil, err
	}
	out := *p
	out.Value = string(plaintext)
	return &out, nil
}

// DeleteParameter removes a parameter; absent ones succeed silently.
func (r *Registry) DeleteParameter(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parameters, name)
}

// ListParameters returns every parameter, sorted by name.
func (r *Registry) ListParameters() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Parameter, 0, len(r.parameters))
	for _, p := range r.parameters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
