// Package dynamodb implements L3's DynamoDB thin store (spec.md §4.4):
// tables with a declared key schema, item CRUD, Query restricted to the
// hash key, a full-table Scan, UpdateItem's SET/REMOVE actions, and
// BatchGetItem/BatchWriteItem (SPEC_FULL.md supplement, bounded batches
// with partial-failure UnprocessedItems/UnprocessedKeys reporting).
package dynamodb

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// AttributeValue is DynamoDB's tagged-union item value, restricted to the
// scalar/set/map shapes this emulator needs to round-trip faithfully.
type AttributeValue struct {
	S    string           `json:"S,omitempty"`
	N    string           `json:"N,omitempty"`
	B    []byte           `json:"B,omitempty"`
	BOOL *bool            `json:"BOOL,omitempty"`
	NULL *bool            `json:"NULL,omitempty"`
	SS   []string         `json:"SS,omitempty"`
	NS   []string         `json:"NS,omitempty"`
	M    map[string]AttributeValue `json:"M,omitempty"`
	L    []AttributeValue `json:"L,omitempty"`
}

// Item is one row: attribute name -> value.
type Item map[string]AttributeValue

// KeySchemaElement names one key attribute and its role.
type KeySchemaElement struct {
	AttributeName string
	KeyType       string // "HASH" or "RANGE"
}

// Table is one DynamoDB table: its declared key schema plus its item
// store, keyed by the encoded (hash[, range]) key.
type Table struct {
	mu sync.RWMutex

	Name      string
	ARN       string
	KeySchema []KeySchemaElement
	CreatedAt string
	items     map[string]Item
	tags      map[string]string
}

func (t *Table) hashKeyName() string {
	for _, k := range t.KeySchema {
		if k.KeyType == "HASH" {
			return k.AttributeName
		}
	}
	return ""
}

func (t *Table) rangeKeyName() (string, bool) {
	for _, k := range t.KeySchema {
		if k.KeyType == "RANGE" {
			return k.AttributeName, true
		}
	}
	return "", false
}

// itemKey renders the internal map key for an item, validating it
// against the table's declared schema.
func (t *Table) itemKey(item Item) (string, error) {
	hashName := t.hashKeyName()
	hv, ok := item[hashName]
	if !ok {
		return "", apperr.New(apperr.InvalidArgument, "item is missing the declared hash key attribute")
	}
	key := encodeAttr(hv)
	if rangeName, hasRange := t.rangeKeyName(); hasRange {
		rv, ok := item[rangeName]
		if !ok {
			return "", apperr.New(apperr.InvalidArgument, "item is missing the declared range key attribute")
		}
		key += "#" + encodeAttr(rv)
	}
	return key, nil
}

func encodeAttr(v AttributeValue) string {
	switch {
	case v.S != "":
		return "S:" + v.S
	case v.N != "":
		return "N:" + v.N
	default:
		return "B:" + string(v.B)
	}
}

// Registry is the single in-memory DynamoDB table store.
type Registry struct {
	mu       sync.RWMutex
	tables   map[string]*Table
	identity identity.Identity
}

// NewRegistry constructs an empty DynamoDB registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{tables: map[string]*Table{}, identity: id}
}

// CreateTable registers a new table; idempotent-by-identity (same name
// returns the existing table).
func (r *Registry) CreateTable(name string, schema []KeySchemaElement, now string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[name]; ok {
		return t, nil
	}
	t := &Table{
		Name:      name,
		ARN:       r.identity.ARN("dynamodb", "table/"+name),
		KeySchema: schema,
		CreatedAt: now,
		items:     map[string]Item{},
		tags:      map[string]string{},
	}
	r.tables[name] = t
	return t, nil
}

// Get returns a table by name, NotFound if absent.
func (r *Registry) Get(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Requested resource not found: Table: "+name+" not found")
	}
	return t, nil
}

// DeleteTable removes a table; absent tables succeed silently.
func (r *Registry) DeleteTable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, name)
}

// ListTables returns every table name, sorted.
func (r *Registry) ListTables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for n := range r.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PutItem stores item under its declared key, replacing any prior value.
func (t *Table) PutItem(item Item) error {
	key, err := t.itemKey(item)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[key] = item
	return nil
}

// GetItem returns the item matching key, (nil, nil) if absent (DynamoDB
// GetItem on a missing key is not an error — it returns an empty
// response).
func (t *Table) GetItem(key Item) (Item, error) {
	itemKey, err := t.itemKey(key)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.items[itemKey], nil
}

// DeleteItem removes the item matching key; returns the prior value, if
// any, for ReturnValues=ALL_OLD callers.
func (t *Table) DeleteItem(key Item) (Item, error) {
	itemKey, err := t.itemKey(key)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.items[itemKey]
	delete(t.items, itemKey)
	return old, nil
}

// Query restricts to items whose hash key attribute equals hashValue
// (spec.md §4.4: "Query restricts on the hash key").
func (t *Table) Query(hashValue AttributeValue) []Item {
	t.mu.RLock()
	defer t.mu.RUnlock()
	hashName := t.hashKeyName()
	var out []Item
	for _, item := range t.items {
		if v, ok := item[hashName]; ok && encodeAttr(v) == encodeAttr(hashValue) {
			out = append(out, item)
		}
	}
	return out
}

// Scan walks the full table (spec.md §4.4).
func (t *Table) Scan() []Item {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Item, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item)
	}
	return out
}

// UpdateAction is one SET or REMOVE clause of an UpdateItem expression.
type UpdateAction struct {
	Attribute string
	Remove    bool
	Value     AttributeValue
}

// UpdateItem applies a parsed sequence of SET/REMOVE actions atomically
// under the table lock and returns the item's state before and after,
// for the caller to select by ReturnValues ∈ {NONE, ALL_OLD, ALL_NEW}.
func (t *Table) UpdateItem(key Item, actions []UpdateAction) (before, after Item, err error) {
	itemKey, err := t.itemKey(key)
	if err != nil {
		return nil, nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := t.items[itemKey]
	before = cloneItem(existing)
	updated := cloneItem(existing)
	if updated == nil {
		updated = Item{}
		for k, v := range key {
			updated[k] = v
		}
	}
	for _, a := range actions {
		if a.Remove {
			delete(updated, a.Attribute)
		} else {
			updated[a.Attribute] = a.Value
		}
	}
	t.items[itemKey] = updated
	return before, updated, nil
}

func cloneItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
