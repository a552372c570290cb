package sns

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(identity.New("", ""), identity.NewClock())
}

func TestCreateTopicIsIdempotentByName(t *testing.T) {
	reg := newTestRegistry(t)
	t1, err := reg.CreateTopic("orders", nil, nil)
	require.NoError(t, err)
	t2, err := reg.CreateTopic("orders", map[string]string{"env": "test"}, nil)
	require.NoError(t, err)
	assert.Same(t, t1, t2)
}

func TestCreateTopicRejectsInvalidName(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.CreateTopic("bad name!", nil, nil)
	require.Error(t, err)
}

func TestCreateFifoTopicRequiresFifoSuffix(t *testing.T) {
	reg := newTestRegistry(t)
	topic, err := reg.CreateTopic("orders.fifo", nil, nil)
	require.NoError(t, err)
	assert.True(t, topic.Fifo)

	plain, err := reg.CreateTopic("not-fifo-named", nil, nil)
	require.NoError(t, err)
	assert.False(t, plain.Fifo)
}

func TestGetByArnMissingIsNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.GetByArn("arn:aws:sns:us-east-1:000000000000:missing")
	require.Error(t, err)
}

func TestDeleteTopicRemovesSubscriptions(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)
	_, err := reg.Subscribe(topic.ARN, "http", "http://example.com/hook", nil)
	require.NoError(t, err)

	require.NoError(t, reg.DeleteTopic(topic.ARN))
	_, err = reg.GetByArn(topic.ARN)
	require.Error(t, err)
	assert.Empty(t, reg.ListSubscriptions())
}

func TestDeleteTopicIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.DeleteTopic("arn:aws:sns:us-east-1:000000000000:missing"))
}

func TestTagUntagResource(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	require.NoError(t, reg.TagResource(topic.ARN, map[string]string{"team": "payments"}))
	tags, err := reg.ListTagsForResource(topic.ARN)
	require.NoError(t, err)
	assert.Equal(t, "payments", tags["team"])

	require.NoError(t, reg.UntagResource(topic.ARN, []string{"team"}))
	tags, err = reg.ListTagsForResource(topic.ARN)
	require.NoError(t, err)
	assert.NotContains(t, tags, "team")
}

func TestListTopicsSortedByArn(t *testing.T) {
	reg := newTestRegistry(t)
	reg.CreateTopic("zeta", nil, nil)
	reg.CreateTopic("alpha", nil, nil)
	arns := reg.ListTopics()
	require.Len(t, arns, 2)
	assert.Contains(t, arns[0], "alpha")
	assert.Contains(t, arns[1], "zeta")
}
