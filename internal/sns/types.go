// Package sns implements SNS's topic/subscription store on top of the
// AWS Query protocol (spec.md §4.4, §6.3): topic CRUD, subscribe/
// unsubscribe/confirm, publish/publishBatch, tagging, and FIFO topics.
// Real delivery to subscriber endpoints is a documented Non-goal (spec.md
// §1); Publish only records acceptance and assigns a MessageId.
package sns

import "time"

// SubscriptionState mirrors SNS's subscription lifecycle. Subscriptions
// auto-confirm (spec.md §6.3, Open Question 1 in SPEC_FULL.md): they are
// created directly in Confirmed state, and ConfirmSubscription is a
// no-op success regardless of current state.
type SubscriptionState string

const (
	SubscriptionConfirmed SubscriptionState = "Confirmed"
)

// Topic is one SNS topic.
type Topic struct {
	Name       string
	ARN        string
	Fifo       bool
	CreatedAt  time.Time
	Tags       map[string]string
	Attributes map[string]string

	subscriptions map[string]*Subscription // by SubscriptionArn
}

// Subscription is one topic's subscriber registration. Protocol/Endpoint
// are stored and reported back but never dialed (Non-goals).
type Subscription struct {
	ARN       string
	TopicArn  string
	Protocol  string
	Endpoint  string
	State     SubscriptionState
	Attributes map[string]string
}

// dedupEntry records a FIFO topic's recently-seen MessageDeduplicationId,
// mirroring SQS's 5-minute dedup window (spec.md §4.4 SNS FIFO
// supplement).
type dedupEntry struct {
	messageID  string
	insertedAt time.Time
}

const dedupWindow = 5 * time.Minute
