package sqs

import (
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/samber/lo"
)

const maxBatchEntries = 10
const maxBatchBytes = 256 * 1024

// BatchEntryError reports one entry's failure in a batch operation
// (spec.md §4.2 SendMessageBatch: "per-entry failures are reported in
// Failed with SenderFault=true").
type BatchEntryError struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

// SendBatchEntry is one entry of a SendMessageBatch request.
type SendBatchEntry struct {
	ID   string
	Send SendInput
}

// SendBatchResult is one successfully-enqueued batch entry's result.
type SendBatchResult struct {
	ID      string
	Message *Message
}

// SendMessageBatch implements spec.md §4.2 SendMessageBatch.
func (r *Registry) SendMessageBatch(queueName string, entries []SendBatchEntry) ([]SendBatchResult, []BatchEntryError, error) {
	if len(entries) == 0 {
		return nil, nil, apperr.New(apperr.InvalidArgument, "SendMessageBatch requires at least one entry")
	}
	if len(entries) > maxBatchEntries {
		return nil, nil, apperr.New(apperr.InvalidArgument, "SendMessageBatch accepts at most 10 entries")
	}

	ids := lo.Map(entries, func(e SendBatchEntry, _ int) string { return e.ID })
	if len(lo.Uniq(ids)) != len(ids) {
		return nil, nil, apperr.New(apperr.InvalidArgument, "batch entry Ids must be unique")
	}

	total := 0
	for _, e := range entries {
		total += len(e.Send.Body)
	}
	if total > maxBatchBytes {
		return nil, nil, apperr.New(apperr.InvalidArgument, "batch request exceeds the 256 KiB total size budget")
	}

	var results []SendBatchResult
	var failed []BatchEntryError
	for _, e := range entries {
		msg, err := r.SendMessage(queueName, e.Send)
		if err != nil {
			kind, message := apperr.As(err)
			failed = append(failed, BatchEntryError{ID: e.ID, Code: string(kind), Message: message, SenderFault: true})
			continue
		}
		results = append(results, SendBatchResult{ID: e.ID, Message: msg})
	}
	return results, failed, nil
}

// DeleteMessageBatch implements spec.md §4.2 batch delete.
func (r *Registry) DeleteMessageBatch(queueName string, entries map[string]string) ([]string, []BatchEntryError) {
	var succeeded []string
	var failed []BatchEntryError
	for id, handle := range entries {
		if err := r.DeleteMessage(queueName, handle); err != nil {
			kind, message := apperr.As(err)
			failed = append(failed, BatchEntryError{ID: id, Code: string(kind), Message: message, SenderFault: true})
			continue
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, failed
}

// ChangeMessageVisibilityBatch implements spec.md §4.2 batch visibility
// change.
func (r *Registry) ChangeMessageVisibilityBatch(queueName string, entries map[string]struct {
	ReceiptHandle string
	Timeout       int
}) ([]string, []BatchEntryError) {
	var succeeded []string
	var failed []BatchEntryError
	for id, e := range entries {
		if err := r.ChangeMessageVisibility(queueName, e.ReceiptHandle, e.Timeout); err != nil {
			kind, message := apperr.As(err)
			failed = append(failed, BatchEntryError{ID: id, Code: string(kind), Message: message, SenderFault: true})
			continue
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, failed
}
