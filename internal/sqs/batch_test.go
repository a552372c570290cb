package sqs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageBatchPartialFailure(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	attrs := DefaultAttributes()
	attrs.MaximumMessageSize = 1024
	_, err := reg.CreateQueue("batch", attrs, nil)
	require.NoError(t, err)

	oversized := make([]byte, attrs.MaximumMessageSize+1)

	results, failed, err := reg.SendMessageBatch("batch", []SendBatchEntry{
		{ID: "1", Send: SendInput{Body: "ok"}},
		{ID: "2", Send: SendInput{Body: string(oversized)}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].ID)
	assert.True(t, failed[0].SenderFault)
}

func TestSendMessageBatchRejectsDuplicateIDs(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("batch", DefaultAttributes(), nil)
	require.NoError(t, err)

	_, _, err = reg.SendMessageBatch("batch", []SendBatchEntry{
		{ID: "1", Send: SendInput{Body: "a"}},
		{ID: "1", Send: SendInput{Body: "b"}},
	})
	require.Error(t, err)
}

func TestSendMessageBatchRejectsOverMaxEntries(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("batch", DefaultAttributes(), nil)
	require.NoError(t, err)

	entries := make([]SendBatchEntry, maxBatchEntries+1)
	for i := range entries {
		entries[i] = SendBatchEntry{ID: string(rune('a' + i)), Send: SendInput{Body: "x"}}
	}
	_, _, err = reg.SendMessageBatch("batch", entries)
	require.Error(t, err)
}
