package sns

import (
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// PublishInput carries one Publish call's decoded fields.
type PublishInput struct {
	Message               string
	Subject               string
	GroupID               string
	DeduplicationID       string
	MessageAttributeNames []string
}

// Publish accepts a message for a topic and returns its MessageId. No
// subscriber is ever dialed (spec.md §1 Non-goals: "real delivery in
// SNS"); FIFO topics apply the same 5-minute dedup window SQS uses.
func (r *Registry) Publish(topicArn string, in PublishInput) (messageID, sequenceNumber string, err error) {
	t, err := r.GetByArn(topicArn)
	if err != nil {
		return "", "", err
	}
	if in.Message == "" {
		return "", "", apperr.New(apperr.InvalidArgument, "Message is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Fifo {
		if in.GroupID == "" {
			return "", "", apperr.New(apperr.InvalidArgument, "MessageGroupId is required for FIFO topics")
		}
		dedupID := in.DeduplicationID
		if dedupID == "" {
			dedupID = identity.SHA256Hex([]byte(in.Message))
		}
		now := r.now()
		index := r.dedup[t.ARN]
		purgeDedupIndex(index, now)
		if entry, ok := index[in.GroupID+"#"+dedupID]; ok {
			return entry.messageID, "", nil
		}
		id := identity.NewID()
		index[in.GroupID+"#"+dedupID] = dedupEntry{messageID: id, insertedAt: now}
		return id, identity.NewID(), nil
	}

	return identity.NewID(), "", nil
}

const maxBatchEntries = 10

// PublishBatchEntry is one entry of a PublishBatch request.
type PublishBatchEntry struct {
	ID              string
	Message         string
	Subject         string
	GroupID         string
	DeduplicationID string
}

// PublishBatchResult is one entry's outcome: exactly one of
// (MessageID, SequenceNumber) or Err is meaningful.
type PublishBatchResult struct {
	ID             string
	MessageID      string
	SequenceNumber string
	Err            error
}

// PublishBatch publishes up to 10 entries, reporting success/failure per
// entry the way SQS's SendMessageBatch does (spec.md §4.4 SNS
// supplement).
func (r *Registry) PublishBatch(topicArn string, entries []PublishBatchEntry) ([]PublishBatchResult, error) {
	if len(entries) == 0 || len(entries) > maxBatchEntries {
		return nil, apperr.New(apperr.InvalidArgument, "PublishBatch accepts between 1 and 10 entries")
	}
	results := make([]PublishBatchResult, 0, len(entries))
	for _, e := range entries {
		id, seq, err := r.Publish(topicArn, PublishInput{
			Message:         e.Message,
			Subject:         e.Subject,
			GroupID:         e.GroupID,
			DeduplicationID: e.DeduplicationID,
		})
		results = append(results, PublishBatchResult{ID: e.ID, MessageID: id, SequenceNumber: seq, Err: err})
	}
	return results, nil
}

func purgeDedupIndex(index map[string]dedupEntry, now time.Time) {
	for k, v := range index {
		if now.Sub(v.insertedAt) > dedupWindow {
			delete(index, k)
		}
	}
}
