// Package thinstore is the shared keyed-entity+tags CRUD scaffolding
// spec.md §4.4 describes for every service outside the SQS/S3/SNS core:
// "(a) a keyed primary store, (b) per-entity attribute and tag maps, (c)
// an ARN formatter, (d) secondary name->id indices where the API
// distinguishes id from name." Services whose behaviour is genuinely
// just CRUD-over-a-map-plus-tags (Firehose, MemoryDB, EventBridge rules,
// API Gateway REST APIs, SES identities, Cognito pools) embed a
// *Store[T] instead of re-deriving this locking/indexing logic; services
// with materially different behaviour (DynamoDB, Kinesis, Step Functions,
// KMS, Secrets Manager, SSM, CloudWatch Logs) keep their own maps.
package thinstore

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
)

// Entity is the minimum shape thinstore needs from T: a stable primary
// key. Services embed their own struct and implement Key().
type Entity interface {
	Key() string
}

// Store is a generic, mutex-guarded map of name -> *T plus a parallel tag
// index, the way spec.md §4.4 describes the common shape.
type Store[T Entity] struct {
	mu      sync.RWMutex
	items   map[string]*T
	tags    map[string]map[string]string
	notFound string // message used for NotFound errors, per-service wording
}

// New constructs an empty Store. notFoundMessage is used verbatim as the
// NotFound error's message.
func New[T Entity](notFoundMessage string) *Store[T] {
	return &Store[T]{
		items:    map[string]*T{},
		tags:     map[string]map[string]string{},
		notFound: notFoundMessage,
	}
}

// Put inserts or replaces the entity under its own Key().
func (s *Store[T]) Put(item *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := (*item).Key()
	s.items[key] = item
	if _, ok := s.tags[key]; !ok {
		s.tags[key] = map[string]string{}
	}
}

// Get returns the entity by key, NotFound if absent.
func (s *Store[T]) Get(key string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[key]
	if !ok {
		return nil, apperr.New(apperr.NotFound, s.notFound)
	}
	return item, nil
}

// Delete removes an entity; absent keys succeed silently, matching the
// lax-delete convention used across this emulator (spec.md §9).
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	delete(s.tags, key)
}

// List returns every stored entity, sorted by key for deterministic
// output.
func (s *Store[T]) List() []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.items[k])
	}
	return out
}

// Tag merges tags into a key's tag set. NotFound if the key is absent.
func (s *Store[T]) Tag(key string, tags map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return apperr.New(apperr.NotFound, s.notFound)
	}
	for k, v := range tags {
		s.tags[key][k] = v
	}
	return nil
}

// Untag removes tag keys from a key's tag set.
func (s *Store[T]) Untag(key string, tagKeys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return apperr.New(apperr.NotFound, s.notFound)
	}
	for _, k := range tagKeys {
		delete(s.tags[key], k)
	}
	return nil
}

// Tags returns a copy of a key's tag set.
func (s *Store[T]) Tags(key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags, ok := s.tags[key]
	if !ok {
		return nil, apperr.New(apperr.NotFound, s.notFound)
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out, nil
}
