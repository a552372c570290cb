// Package sqs implements L3 of the emulator for SQS: queues, message
// lifecycle, long-poll wakeups, FIFO ordering/dedup, DLQ redrive, and
// message-move tasks (spec.md §3.2, §4.2).
package sqs

import (
	"time"
)

// MessageState is derived, never stored directly (spec.md §3.2 invariant).
type MessageState string

const (
	StateDelayed  MessageState = "Delayed"
	StateVisible  MessageState = "Visible"
	StateInFlight MessageState = "InFlight"
)

// DeduplicationScope controls whether the dedup index is keyed per queue
// or per message group.
type DeduplicationScope string

const (
	ScopeQueue        DeduplicationScope = "queue"
	ScopeMessageGroup  DeduplicationScope = "messageGroup"
)

// Attributes mirrors the typed SQS queue attribute set of spec.md §3.2.
type Attributes struct {
	VisibilityTimeout             int // seconds
	MessageRetentionPeriod        int // seconds
	DelaySeconds                  int
	MaximumMessageSize             int // bytes
	ReceiveMessageWaitTimeSeconds  int
	RedrivePolicy                  *RedrivePolicy
	RedriveAllowPolicy              *RedriveAllowPolicy
	FifoQueue                       bool
	ContentBasedDeduplication       bool
	DeduplicationScope              DeduplicationScope
	FifoThroughputLimit             string
}

// DefaultAttributes mirror real SQS server-side defaults.
func DefaultAttributes() Attributes {
	return Attributes{
		VisibilityTimeout:            30,
		MessageRetentionPeriod:       4 * 24 * 3600,
		DelaySeconds:                 0,
		MaximumMessageSize:           256 * 1024,
		ReceiveMessageWaitTimeSeconds: 0,
		DeduplicationScope:           ScopeQueue,
		FifoThroughputLimit:          "perQueue",
	}
}

// RedrivePolicy names a dead-letter queue by ARN and the receive count at
// which a message is moved there.
type RedrivePolicy struct {
	DeadLetterTargetArn string
	MaxReceiveCount     int
}

// RedriveAllowPolicy restricts which source queues may redrive into this
// queue; modelled but not enforced beyond storage (spec.md treats it as a
// typed attribute without further behaviour required).
type RedriveAllowPolicy struct {
	RedrivePermission string
	SourceQueueArns   []string
}

// PermissionLabel is one entry of a queue's access policy (spec.md §3.2).
type PermissionLabel struct {
	Accounts []string
	Actions  []string
}

// MessageAttributeValue models one SQS MessageAttributeValue.
type MessageAttributeValue struct {
	DataType    string
	StringValue string
	BinaryValue []byte
}

// Message is one SQS message, immutable fields plus the mutable lifecycle
// state spec.md §3.2 describes.
type Message struct {
	ID                string
	Body              string
	MessageAttributes map[string]MessageAttributeValue
	SystemAttributes  map[string]string
	SentAt            time.Time
	SenderAccountID   string

	// FIFO-only
	GroupID         string
	DeduplicationID string
	SequenceNumber  string

	// Mutable lifecycle
	VisibleAt        time.Time
	ReceiptHandle    string
	Generation       int64
	ReceiveCount     int
	FirstReceivedAt  *time.Time
}

// State derives the message's current lifecycle state from the clock,
// per spec.md §3.2's computed-not-stored invariant.
func (m *Message) State(now time.Time) MessageState {
	if m.ReceiptHandle != "" {
		if now.Before(m.VisibleAt) {
			return StateInFlight
		}
		return StateVisible
	}
	if now.Before(m.VisibleAt) {
		return StateDelayed
	}
	return StateVisible
}

// dedupEntry records when a dedup id was last seen, for the 5-minute
// window lazy purge.
type dedupEntry struct {
	messageID string
	insertedAt time.Time
}

// receiveCacheEntry caches the receipt handles returned for a given
// ReceiveRequestAttemptId, for the FIFO idempotent-receive invariant.
type receiveCacheEntry struct {
	messageIDs     []string
	receiptHandles []string
	insertedAt     time.Time
}

const dedupWindow = 5 * time.Minute

// group is a FIFO message group: its messages in send order plus a
// counter of currently in-flight messages (spec.md design notes: a
// counter, not a boolean, so a relaxed multi-inflight mode is a one-line
// change).
type group struct {
	messageIDs    []string
	inFlightCount int
}

func (g *group) locked() bool {
	return g.inFlightCount > 0
}
