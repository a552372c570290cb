// Package cloudwatchlogs implements L3's CloudWatch Logs thin store
// (spec.md §4.4): log groups, their streams, and an append-only event
// log per stream. FilterLogEvents does a plain substring match, not
// real CloudWatch filter-pattern syntax. Per Open Question 4
// (SPEC_FULL.md), PutLogEvents accepts any sequenceToken value,
// including none at all — there is no sequencing enforcement.
package cloudwatchlogs

import (
	"sort"
	"strings"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// Event is one log event within a stream.
type Event struct {
	Timestamp int64
	Message   string
}

type logStream struct {
	name   string
	events []Event
}

// LogGroup is one log group: a named collection of streams.
type LogGroup struct {
	mu        sync.Mutex
	Name      string
	ARN       string
	CreatedAt int64
	streams   map[string]*logStream
}

// Registry is the single in-memory CloudWatch Logs store.
type Registry struct {
	mu       sync.RWMutex
	groups   map[string]*LogGroup
	identity identity.Identity
}

// NewRegistry constructs an empty CloudWatch Logs registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{groups: map[string]*LogGroup{}, identity: id}
}

// CreateLogGroup registers name, idempotent by name.
func (r *Registry) CreateLogGroup(name string, createdAt int64) (*LogGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[name]; ok {
		return g, nil
	}
	g := &LogGroup{
		Name:      name,
		ARN:       r.identity.ARN("logs", "log-group:"+name),
		CreatedAt: createdAt,
		streams:   map[string]*logStream{},
	}
	r.groups[name] = g
	return g, nil
}

// GetLogGroup resolves a group by name, NotFound if absent.
func (r *Registry) GetLogGroup(name string) (*LogGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified log group does not exist")
	}
	return g, nil
}

// DeleteLogGroup removes a group; absent ones succeed silently.
func (r *Registry) DeleteLogGroup(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, name)
}

// ListLogGroups returns every group name, sorted.
func (r *Registry) ListLogGroups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for n := range r.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CreateLogStream registers streamName within the group, idempotent by
// name.
func (g *LogGroup) CreateLogStream(streamName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.streams[streamName]; !ok {
		g.streams[streamName] = &logStream{name: streamName}
	}
}

// PutLogEvents appends events to streamName, creating it if absent.
// sequenceToken is accepted unconditionally (Open Question 4).
func (g *LogGroup) PutLogEvents(streamName string, events []Event, sequenceToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[streamName]
	if !ok {
		s = &logStream{name: streamName}
		g.streams[streamName] = s
	}
	s.events = append(s.events, events...)
	return nil
}

// GetLogEvents returns streamName's events in order.
func (g *LogGroup) GetLogEvents(streamName string) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[streamName]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified log stream does not exist")
	}
	return append([]Event(nil), s.events...), nil
}

// FilterLogEvents returns every event across all of the group's streams
// whose message contains pattern as a plain substring (spec.md §4.4:
// not CloudWatch's real filter-pattern language).
func (g *LogGroup) FilterLogEvents(pattern string) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Event
	names := make([]string, 0, len(g.streams))
	for n := range g.streams {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		for _, e := range g.streams[n].events {
			if pattern == "" || strings.Contains(e.Message, pattern) {
				out = append(out, e)
			}
		}
	}
	return out
}
