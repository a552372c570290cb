package s3

import (
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// Registry is the single in-memory bucket store. A registry lock guards
// the name->*Bucket map; each Bucket's own mutex guards its objects and
// uploads so unrelated buckets never block each other (spec.md §4.3).
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket

	identity identity.Identity
	clock    *identity.Clock
}

// lockBuckets locks two buckets in deterministic name order to avoid
// deadlock on cross-bucket operations such as CopyObject (spec.md §5:
// "acquire locks in deterministic order (by name)").
func lockBuckets(a, b *Bucket) (unlock func()) {
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

// NewRegistry constructs an empty S3 registry.
func NewRegistry(id identity.Identity, clock *identity.Clock) *Registry {
	return &Registry{
		buckets:  map[string]*Bucket{},
		identity: id,
		clock:    clock,
	}
}

func (r *Registry) now() time.Time { return r.clock.Now() }

func validateBucketName(name string) error {
	if !bucketNamePattern.MatchString(name) {
		return apperr.New(apperr.InvalidArgument, "bucket name must be 1-63 DNS-compatible characters")
	}
	return nil
}

// CreateBucket creates a bucket if absent; idempotent if the caller
// re-creates a bucket it already owns (no per-owner ACL model here, so
// any re-create of an existing name succeeds silently).
func (r *Registry) CreateBucket(name string) (*Bucket, error) {
	if err := validateBucketName(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buckets[name]; ok {
		return b, nil
	}
	b := newBucket(name, r.now())
	r.buckets[name] = b
	return b, nil
}

// Get returns the bucket by name, NotFound if absent.
func (r *Registry) Get(name string) (*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buckets[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified bucket does not exist")
	}
	return b, nil
}

// DeleteBucket removes an empty bucket; refuses with Conflict
// (BucketNotEmpty) if objects or multipart uploads remain.
func (r *Registry) DeleteBucket(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[name]
	if !ok {
		return nil
	}
	b.mu.Lock()
	empty := len(b.objects) == 0 && len(b.uploads) == 0
	b.mu.Unlock()
	if !empty {
		return errBucketNotEmpty
	}
	delete(r.buckets, name)
	return nil
}

// ListBuckets returns all bucket names, sorted.
func (r *Registry) ListBuckets() []*Bucket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Bucket, 0, len(r.buckets))
	for _, b := range r.buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Region is the configured region every bucket reports via
// GetBucketLocation, regardless of emptiness (spec.md §4.3 invariant).
func (r *Registry) Region() string { return r.identity.Region }

// SetVersioning sets a bucket's versioning status.
func (r *Registry) SetVersioning(bucketName string, status VersioningStatus) error {
	b, err := r.Get(bucketName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Versioning = status
	return nil
}

// TagBucket replaces a bucket's tag set.
func (r *Registry) TagBucket(bucketName string, tags map[string]string) error {
	b, err := r.Get(bucketName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Tags = tags
	return nil
}

// DeleteBucketTagging clears a bucket's tag set.
func (r *Registry) DeleteBucketTagging(bucketName string) error {
	return r.TagBucket(bucketName, map[string]string{})
}
