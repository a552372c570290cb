package sns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStandardTopicAssignsMessageID(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	id, seq, err := reg.Publish(topic.ARN, PublishInput{Message: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, seq)
}

func TestPublishRequiresMessage(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	_, _, err := reg.Publish(topic.ARN, PublishInput{Message: ""})
	require.Error(t, err)
}

func TestPublishFifoRequiresGroupID(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders.fifo", nil, nil)

	_, _, err := reg.Publish(topic.ARN, PublishInput{Message: "hello"})
	require.Error(t, err)
}

func TestPublishFifoDedupesWithinWindow(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders.fifo", nil, nil)

	id1, _, err := reg.Publish(topic.ARN, PublishInput{Message: "hello", GroupID: "g1", DeduplicationID: "dup1"})
	require.NoError(t, err)
	id2, _, err := reg.Publish(topic.ARN, PublishInput{Message: "hello again", GroupID: "g1", DeduplicationID: "dup1"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestPublishBatchReportsPerEntryOutcome(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	results, err := reg.PublishBatch(topic.ARN, []PublishBatchEntry{
		{ID: "1", Message: "hi"},
		{ID: "2", Message: ""},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].MessageID)
	assert.Error(t, results[1].Err)
}

func TestPublishBatchRejectsEmptyOrOversizedInput(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	_, err := reg.PublishBatch(topic.ARN, nil)
	require.Error(t, err)

	entries := make([]PublishBatchEntry, 11)
	for i := range entries {
		entries[i] = PublishBatchEntry{ID: "x", Message: "hi"}
	}
	_, err = reg.PublishBatch(topic.ARN, entries)
	require.Error(t, err)
}
