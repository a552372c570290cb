package sqs

import (
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,80}$`)

// Registry is the single in-memory queuesByName store (spec.md §4.2): a
// registry lock guards the map of names to *Queue, while each Queue's own
// mutex guards its message lifecycle so unrelated queues never block each
// other.
type Registry struct {
	mu       sync.RWMutex
	queues   map[string]*Queue
	identity identity.Identity
	clock    *identity.Clock
	host     string
}

// NewRegistry constructs an empty SQS registry.
func NewRegistry(id identity.Identity, clock *identity.Clock, host string) *Registry {
	return &Registry{
		queues:   map[string]*Queue{},
		identity: id,
		clock:    clock,
		host:     host,
	}
}

func (r *Registry) now() time.Time { return r.clock.Now() }

func validateQueueName(name string, fifo bool) error {
	if !namePattern.MatchString(name) {
		return apperr.New(apperr.InvalidArgument, "queue name must match [A-Za-z0-9_-]{1,80}")
	}
	isFifoName := identity.IsFifoName(name)
	if isFifoName != fifo {
		return apperr.New(apperr.InvalidArgument, "queue name must end in .fifo iff FifoQueue is true")
	}
	return nil
}

// CreateQueue implements spec.md §4.2 CreateQueue: idempotent on exact
// attribute match, QueueAlreadyExists otherwise.
func (r *Registry) CreateQueue(name string, attrs Attributes, tags map[string]string) (*Queue, error) {
	if err := validateQueueName(name, attrs.FifoQueue); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.queues[name]; ok {
		existing.mu.Lock()
		same := attributesEqual(existing.Attrs, attrs)
		existing.mu.Unlock()
		if !same {
			return nil, apperr.New(apperr.AlreadyExists, "QueueAlreadyExists")
		}
		return existing, nil
	}

	arn := r.identity.ARN("sqs", name)
	q := newQueue(name, arn, attrs, tags, r.now())
	r.queues[name] = q
	return q, nil
}

// Get returns the queue by name, NotFound (rendered as
// AWS.SimpleQueueService.NonExistentQueue by ErrorTable) if absent.
func (r *Registry) Get(name string) (*Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified queue does not exist")
	}
	return q, nil
}

// GetByArn resolves a queue by its ARN, used by DLQ redrive and move
// tasks which store the relationship by ARN string to tolerate deletion
// and recreation (spec.md design notes).
func (r *Registry) GetByArn(arn string) (*Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.queues {
		if q.Arn == arn {
			return q, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "The specified queue does not exist")
}

// DeleteQueue removes a queue. Per spec.md §9 Open Question, this
// implementation picks the lax/idempotent interpretation: deleting an
// absent queue succeeds silently (see SPEC_FULL.md Open Questions §2).
func (r *Registry) DeleteQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.queues, name)
	return nil
}

// ListQueues returns queue names, optionally filtered by name prefix,
// sorted for deterministic pagination-free output (real ListQueues
// supports pagination; the emulator returns the full set, matching
// real-world emulators of this surface at this scale).
func (r *Registry) ListQueues(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name := range r.queues {
		if prefix == "" || hasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// QueueURL renders the canonical URL for a queue name.
func (r *Registry) QueueURL(name string) string {
	return identity.QueueURL(r.host, r.identity.AccountID, name)
}

// lockOrdered locks two queues in deterministic name order to avoid
// deadlock on cross-queue operations (spec.md §5: "acquire locks in
// deterministic order (by name)").
func lockOrdered(a, b *Queue) (unlock func()) {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if b.Name < a.Name {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
