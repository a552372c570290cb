package sns

import (
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

var topicNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// Registry is the single in-memory topic store (spec.md §6.3): one lock
// guards the name->*Topic map and each topic's own subscription map,
// since topic mutation rates are far below SQS/S3's and a single lock
// keeps Subscribe/Publish/Tag trivially consistent.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]*Topic

	identity identity.Identity
	clock    *identity.Clock

	dedup map[string]map[string]dedupEntry // topic ARN -> dedup id -> entry
}

// NewRegistry constructs an empty SNS registry.
func NewRegistry(id identity.Identity, clock *identity.Clock) *Registry {
	return &Registry{
		topics:   map[string]*Topic{},
		identity: id,
		clock:    clock,
		dedup:    map[string]map[string]dedupEntry{},
	}
}

func (r *Registry) now() time.Time { return r.clock.Now() }

func validateTopicName(name string, fifo bool) error {
	if !topicNamePattern.MatchString(name) {
		return apperr.New(apperr.InvalidArgument, "topic name must match [A-Za-z0-9_-]{1,256}")
	}
	if identity.IsFifoName(name) != fifo {
		return apperr.New(apperr.InvalidArgument, "topic name must end in .fifo iff the topic is FIFO")
	}
	return nil
}

// CreateTopic is idempotent: re-creating an existing name returns the
// same topic regardless of attribute differences (SNS's own behaviour —
// unlike SQS, CreateTopic never returns AlreadyExists for an attribute
// mismatch).
func (r *Registry) CreateTopic(name string, tags map[string]string, attrs map[string]string) (*Topic, error) {
	fifo := identity.IsFifoName(name)
	if err := validateTopicName(name, fifo); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.topics[name]; ok {
		return t, nil
	}

	t := &Topic{
		Name:          name,
		ARN:           r.identity.ARN("sns", name),
		Fifo:          fifo,
		CreatedAt:     r.now(),
		Tags:          copyTags(tags),
		Attributes:    copyTags(attrs),
		subscriptions: map[string]*Subscription{},
	}
	r.topics[name] = t
	r.dedup[t.ARN] = map[string]dedupEntry{}
	return t, nil
}

// GetByArn resolves a topic by ARN, NotFound if absent.
func (r *Registry) GetByArn(arn string) (*Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.topics {
		if t.ARN == arn {
			return t, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Topic does not exist")
}

// DeleteTopic removes a topic and its subscriptions; absent topics
// succeed silently, matching SNS's own idempotent DeleteTopic.
func (r *Registry) DeleteTopic(arn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range r.topics {
		if t.ARN == arn {
			delete(r.topics, name)
			delete(r.dedup, arn)
			return nil
		}
	}
	return nil
}

// ListTopics returns every topic ARN, sorted.
func (r *Registry) ListTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	arns := make([]string, 0, len(r.topics))
	for _, t := range r.topics {
		arns = append(arns, t.ARN)
	}
	sort.Strings(arns)
	return arns
}

// SetTopicAttributes merges one attribute into a topic.
func (r *Registry) SetTopicAttributes(arn, name, value string) error {
	t, err := r.GetByArn(arn)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Attributes[name] = value
	return nil
}

// TagResource replaces/merges a topic's tags.
func (r *Registry) TagResource(arn string, tags map[string]string) error {
	t, err := r.GetByArn(arn)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range tags {
		t.Tags[k] = v
	}
	return nil
}

// UntagResource removes the named tag keys from a topic.
func (r *Registry) UntagResource(arn string, keys []string) error {
	t, err := r.GetByArn(arn)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(t.Tags, k)
	}
	return nil
}

// ListTagsForResource returns a copy of a topic's tags.
func (r *Registry) ListTagsForResource(arn string) (map[string]string, error) {
	t, err := r.GetByArn(arn)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyTags(t.Tags), nil
}

func copyTags(tags map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range tags {
		out[k] = v
	}
	return out
}
