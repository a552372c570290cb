// Package eventbridge implements L3's EventBridge thin store (spec.md
// §4.4 / SPEC_FULL.md supplement): rules and targets as keyed CRUD
// entities, plus PutEvents, which only records accepted events — rule
// pattern matching and target invocation are a documented Non-goal.
package eventbridge

import (
	"sync"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/thinstore"
)

// Target is one rule target (an ID and a target ARN, never actually
// invoked).
type Target struct {
	ID  string
	Arn string
}

// Rule is one EventBridge rule.
type Rule struct {
	Name         string
	ARN          string
	EventPattern string
	State        string
	mu           sync.Mutex
	targets      map[string]Target
}

// Key implements thinstore.Entity.
func (r *Rule) Key() string { return r.Name }

// PutTargets attaches targets to the rule, replacing any with the same
// ID.
func (r *Rule) PutTargets(targets []Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.targets == nil {
		r.targets = map[string]Target{}
	}
	for _, t := range targets {
		r.targets[t.ID] = t
	}
}

// Targets returns the rule's current targets.
func (r *Rule) Targets() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	return out
}

// RecordedEvent is one event PutEvents accepted.
type RecordedEvent struct {
	Source     string
	DetailType string
	Detail     string
	EventID    string
}

// Registry is the single in-memory EventBridge store.
type Registry struct {
	store    *thinstore.Store[Rule]
	identity identity.Identity

	mu     sync.Mutex
	events []RecordedEvent
}

// NewRegistry constructs an empty EventBridge registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{store: thinstore.New[Rule]("Rule not found"), identity: id}
}

// PutRule registers a new rule.
func (r *Registry) PutRule(name, eventPattern string) *Rule {
	rule := &Rule{
		Name:         name,
		ARN:          r.identity.ARN("events", "rule/"+name),
		EventPattern: eventPattern,
		State:        "ENABLED",
	}
	r.store.Put(rule)
	return rule
}

// Get resolves a rule by name.
func (r *Registry) Get(name string) (*Rule, error) { return r.store.Get(name) }

// DeleteRule removes a rule; absent ones succeed silently.
func (r *Registry) DeleteRule(name string) { r.store.Delete(name) }

// ListRules returns every rule, sorted by name.
func (r *Registry) ListRules() []*Rule { return r.store.List() }

// PutEvents records each event's acceptance and assigns it an ID; no
// rule is ever matched or invoked against it.
func (r *Registry) PutEvents(events []RecordedEvent) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(events))
	for i, e := range events {
		e.EventID = identity.NewID()
		ids[i] = e.EventID
		r.events = append(r.events, e)
	}
	return ids
}
