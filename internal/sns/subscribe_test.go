package sns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAutoConfirms(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	sub, err := reg.Subscribe(topic.ARN, "http", "http://example.com/hook", nil)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionConfirmed, sub.State)
}

func TestSubscribeRequiresProtocolAndEndpoint(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)

	_, err := reg.Subscribe(topic.ARN, "", "http://example.com/hook", nil)
	require.Error(t, err)
}

func TestConfirmSubscriptionIsNoOpSuccess(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)
	sub, err := reg.Subscribe(topic.ARN, "http", "http://example.com/hook", nil)
	require.NoError(t, err)

	arn, err := reg.ConfirmSubscription(topic.ARN, "any-token")
	require.NoError(t, err)
	assert.Equal(t, sub.ARN, arn)
}

func TestUnsubscribeRemovesAcrossTopics(t *testing.T) {
	reg := newTestRegistry(t)
	topic, _ := reg.CreateTopic("orders", nil, nil)
	sub, err := reg.Subscribe(topic.ARN, "http", "http://example.com/hook", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Unsubscribe(sub.ARN))
	subs, err := reg.ListSubscriptionsByTopic(topic.ARN)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestListSubscriptionsAcrossAllTopics(t *testing.T) {
	reg := newTestRegistry(t)
	a, _ := reg.CreateTopic("a", nil, nil)
	b, _ := reg.CreateTopic("b", nil, nil)
	reg.Subscribe(a.ARN, "http", "http://example.com/a", nil)
	reg.Subscribe(b.ARN, "http", "http://example.com/b", nil)

	assert.Len(t, reg.ListSubscriptions(), 2)
}
