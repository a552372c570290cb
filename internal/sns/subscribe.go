package sns

import (
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// Subscribe registers a subscriber against a topic. Per SPEC_FULL.md
// Open Question 1, the subscription is created already Confirmed —
// real delivery/handshake to the endpoint is a documented Non-goal.
func (r *Registry) Subscribe(topicArn, protocol, endpoint string, attrs map[string]string) (*Subscription, error) {
	t, err := r.GetByArn(topicArn)
	if err != nil {
		return nil, err
	}
	if protocol == "" || endpoint == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Protocol and Endpoint are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &Subscription{
		ARN:        r.identity.ARN("sns", t.Name+"/"+identity.NewID()),
		TopicArn:   topicArn,
		Protocol:   protocol,
		Endpoint:   endpoint,
		State:      SubscriptionConfirmed,
		Attributes: copyTags(attrs),
	}
	t.subscriptions[sub.ARN] = sub
	return sub, nil
}

// ConfirmSubscription is a no-op success: subscriptions are already
// Confirmed on creation (SPEC_FULL.md Open Question 1).
func (r *Registry) ConfirmSubscription(topicArn, token string) (string, error) {
	t, err := r.GetByArn(topicArn)
	if err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range t.subscriptions {
		return sub.ARN, nil
	}
	return r.identity.ARN("sns", t.Name+"/"+identity.NewID()), nil
}

// Unsubscribe removes a subscription by ARN; absent subscriptions
// succeed silently.
func (r *Registry) Unsubscribe(subscriptionArn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.topics {
		delete(t.subscriptions, subscriptionArn)
	}
	return nil
}

// ListSubscriptions returns every subscription across every topic.
func (r *Registry) ListSubscriptions() []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Subscription
	for _, t := range r.topics {
		for _, sub := range t.subscriptions {
			out = append(out, sub)
		}
	}
	return out
}

// ListSubscriptionsByTopic returns one topic's subscriptions.
func (r *Registry) ListSubscriptionsByTopic(topicArn string) ([]*Subscription, error) {
	t, err := r.GetByArn(topicArn)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Subscription, 0, len(t.subscriptions))
	for _, sub := range t.subscriptions {
		out = append(out, sub)
	}
	return out, nil
}
