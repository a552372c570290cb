package sqs

import (
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/samber/lo"
)

const maxTags = 50
const maxPolicyLabels = 7

// GetQueueAttributes snapshots the queue's attributes plus the
// approximate counters AWS reports alongside them.
type QueueAttributesSnapshot struct {
	Attrs                         Attributes
	ApproximateNumberOfMessages          int
	ApproximateNumberOfMessagesNotVisible int
	ApproximateNumberOfMessagesDelayed    int
	CreatedTimestamp                      int64
	QueueArn                              string
}

// attributesEqual compares two Attributes by value, including through the
// RedrivePolicy/RedriveAllowPolicy pointers (CreateQueue's idempotency
// check must not reject a re-create that names the same redrive policy
// values through a different pointer).
func attributesEqual(a, b Attributes) bool {
	if a.VisibilityTimeout != b.VisibilityTimeout ||
		a.MessageRetentionPeriod != b.MessageRetentionPeriod ||
		a.DelaySeconds != b.DelaySeconds ||
		a.MaximumMessageSize != b.MaximumMessageSize ||
		a.ReceiveMessageWaitTimeSeconds != b.ReceiveMessageWaitTimeSeconds ||
		a.FifoQueue != b.FifoQueue ||
		a.ContentBasedDeduplication != b.ContentBasedDeduplication ||
		a.DeduplicationScope != b.DeduplicationScope ||
		a.FifoThroughputLimit != b.FifoThroughputLimit {
		return false
	}
	if !redrivePolicyEqual(a.RedrivePolicy, b.RedrivePolicy) {
		return false
	}
	if !redriveAllowPolicyEqual(a.RedriveAllowPolicy, b.RedriveAllowPolicy) {
		return false
	}
	return true
}

func redrivePolicyEqual(a, b *RedrivePolicy) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func redriveAllowPolicyEqual(a, b *RedriveAllowPolicy) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.RedrivePermission == b.RedrivePermission && lo.Every(a.SourceQueueArns, b.SourceQueueArns) && lo.Every(b.SourceQueueArns, a.SourceQueueArns)
}

// GetQueueAttributes implements spec.md §4.2/§6.2 GetQueueAttributes.
func (r *Registry) GetQueueAttributes(queueName string) (QueueAttributesSnapshot, error) {
	q, err := r.Get(queueName)
	if err != nil {
		return QueueAttributesSnapshot{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := r.now()
	return QueueAttributesSnapshot{
		Attrs:                                 q.Attrs,
		ApproximateNumberOfMessages:           q.approximateVisible(now),
		ApproximateNumberOfMessagesNotVisible: q.approximateInFlight(now),
		ApproximateNumberOfMessagesDelayed:    q.approximateDelayed(now),
		CreatedTimestamp:                      q.CreatedAt.Unix(),
		QueueArn:                              q.Arn,
	}, nil
}

// SetQueueAttributes implements spec.md §4.2 SetQueueAttributes. FifoQueue
// is immutable after create (spec.md §3.2) and is silently ignored here if
// resent with the same value, rejected otherwise.
func (r *Registry) SetQueueAttributes(queueName string, attrs Attributes) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if attrs.FifoQueue != q.Attrs.FifoQueue {
		return apperr.New(apperr.InvalidArgument, "FifoQueue cannot be changed after a queue is created")
	}
	fifo := q.Attrs.FifoQueue
	q.Attrs = attrs
	q.Attrs.FifoQueue = fifo
	return nil
}

// TagQueue merges tags into the queue's tag set, enforcing the 50-tag cap.
func (r *Registry) TagQueue(queueName string, tags map[string]string) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	merged := map[string]string{}
	for k, v := range q.Tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	if len(merged) > maxTags {
		return apperr.New(apperr.OverLimit, "a queue supports at most 50 tags")
	}
	q.Tags = merged
	return nil
}

// UntagQueue removes the named tag keys.
func (r *Registry) UntagQueue(queueName string, keys []string) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, k := range keys {
		delete(q.Tags, k)
	}
	return nil
}

// ListQueueTags returns a copy of the queue's tag set.
func (r *Registry) ListQueueTags(queueName string) (map[string]string, error) {
	q, err := r.Get(queueName)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := map[string]string{}
	for k, v := range q.Tags {
		out[k] = v
	}
	return out, nil
}

// SetPermissionLabel implements AddPermission, enforcing the 7-label cap.
func (r *Registry) SetPermissionLabel(queueName, label string, l PermissionLabel) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.Policy[label]; !exists && len(q.Policy) >= maxPolicyLabels {
		return apperr.New(apperr.OverLimit, "a queue supports at most 7 permission labels")
	}
	q.Policy[label] = l
	return nil
}

// RemovePermissionLabel implements RemovePermission.
func (r *Registry) RemovePermissionLabel(queueName, label string) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.Policy, label)
	return nil
}
