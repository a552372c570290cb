// Package lambda implements L3's Lambda thin store (SPEC_FULL.md domain
// stack supplement): function registration and a stub Invoke that never
// executes user code, returning a canned 200 payload instead. Real
// execution is out of scope; the registry only tracks what a caller
// would need to script against (create, list, describe, delete, invoke).
package lambda

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// Function is one registered Lambda function's metadata.
type Function struct {
	Name         string
	ARN          string
	Runtime      string
	Handler      string
	Role         string
	CreatedAt    string
	LastModified string
	tags         map[string]string
}

// Registry is the single in-memory Lambda function store.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]*Function
	identity  identity.Identity
}

// NewRegistry constructs an empty Lambda registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{functions: map[string]*Function{}, identity: id}
}

// CreateFunction registers fn, replacing any prior function of the same
// name (CreateFunction on an existing name is a conflict in real Lambda;
// this emulator keeps the simpler update-in-place behavior since callers
// only need a working handle, not strict idempotency semantics).
func (r *Registry) CreateFunction(name, runtime, handler, role, now string) *Function {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn := &Function{
		Name:         name,
		ARN:          r.identity.ARN("lambda", "function:"+name),
		Runtime:      runtime,
		Handler:      handler,
		Role:         role,
		CreatedAt:    now,
		LastModified: now,
		tags:         map[string]string{},
	}
	r.functions[name] = fn
	return fn
}

// Get returns a function by name, NotFound if absent.
func (r *Registry) Get(name string) (*Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Function not found: "+name)
	}
	return fn, nil
}

// Delete removes a function; absent functions succeed silently.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.functions, name)
}

// List returns every function, sorted by name.
func (r *Registry) List() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Function, 0, len(r.functions))
	for _, fn := range r.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke is a stub: it never runs fn's handler and always reports a
// successful, empty execution. Callers that need a specific response
// shape from their function are out of scope.
func (r *Registry) Invoke(name string) ([]byte, error) {
	if _, err := r.Get(name); err != nil {
		return nil, err
	}
	return []byte(`{"statusCode":200,"body":""}`), nil
}
