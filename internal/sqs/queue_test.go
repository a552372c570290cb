package sqs

import (
	"context"
	"testing"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(now time.Time) (*Registry, *identity.Clock) {
	clock := &identity.Clock{Now: func() time.Time { return now }}
	reg := NewRegistry(identity.New("", ""), clock, "sqs.local")
	return reg, clock
}

func TestCreateQueueIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())

	attrs := DefaultAttributes()
	q1, err := reg.CreateQueue("orders", attrs, nil)
	require.NoError(t, err)

	q2, err := reg.CreateQueue("orders", attrs, nil)
	require.NoError(t, err)
	assert.Same(t, q1, q2)

	attrs.VisibilityTimeout = 99
	_, err = reg.CreateQueue("orders", attrs, nil)
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.AlreadyExists, kind)
}

func TestCreateQueueIdempotentAcrossEqualRedrivePolicyPointers(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	attrs := DefaultAttributes()
	attrs.RedrivePolicy = &RedrivePolicy{DeadLetterTargetArn: "arn:aws:sqs:us-east-1:000000000000:dlq", MaxReceiveCount: 3}

	_, err := reg.CreateQueue("with-dlq", attrs, nil)
	require.NoError(t, err)

	second := DefaultAttributes()
	second.RedrivePolicy = &RedrivePolicy{DeadLetterTargetArn: "arn:aws:sqs:us-east-1:000000000000:dlq", MaxReceiveCount: 3}
	_, err = reg.CreateQueue("with-dlq", second, nil)
	assert.NoError(t, err, "equal redrive policy values through a different pointer must still be idempotent")
}

func TestSendReceiveDeleteStandard(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("tasks", DefaultAttributes(), nil)
	require.NoError(t, err)

	msg, err := reg.SendMessage("tasks", SendInput{Body: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	msgs, handles, err := reg.ReceiveMessage(context.Background(), "tasks", ReceiveInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
	assert.Equal(t, 1, msgs[0].ReceiveCount)

	msgs2, _, err := reg.ReceiveMessage(context.Background(), "tasks", ReceiveInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	assert.Empty(t, msgs2, "an in-flight message must not be redelivered")

	require.NoError(t, reg.DeleteMessage("tasks", handles[0]))

	msgs3, _, err := reg.ReceiveMessage(context.Background(), "tasks", ReceiveInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	assert.Empty(t, msgs3)
}

func TestVisibilityExpiryMakesMessageVisibleAgain(t *testing.T) {
	now := time.Now()
	reg, clock := newTestRegistry(now)
	attrs := DefaultAttributes()
	attrs.VisibilityTimeout = 5
	_, err := reg.CreateQueue("retry", attrs, nil)
	require.NoError(t, err)

	_, err = reg.SendMessage("retry", SendInput{Body: "payload"})
	require.NoError(t, err)

	msgs, _, err := reg.ReceiveMessage(context.Background(), "retry", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	more, _, err := reg.ReceiveMessage(context.Background(), "retry", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	assert.Empty(t, more)

	clock.Now = func() time.Time { return now.Add(6 * time.Second) }

	again, _, err := reg.ReceiveMessage(context.Background(), "retry", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2, again[0].ReceiveCount)
}

func TestFifoContentBasedDeduplication(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	attrs := DefaultAttributes()
	attrs.FifoQueue = true
	attrs.ContentBasedDeduplication = true
	_, err := reg.CreateQueue("orders.fifo", attrs, nil)
	require.NoError(t, err)

	m1, err := reg.SendMessage("orders.fifo", SendInput{Body: "same body", GroupID: "g1"})
	require.NoError(t, err)

	m2, err := reg.SendMessage("orders.fifo", SendInput{Body: "same body", GroupID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, m1.ID, m2.ID, "content-based dedup within the 5-minute window must return the original message")
}

func TestFifoExplicitDeduplication(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	attrs := DefaultAttributes()
	attrs.FifoQueue = true
	_, err := reg.CreateQueue("orders.fifo", attrs, nil)
	require.NoError(t, err)

	m1, err := reg.SendMessage("orders.fifo", SendInput{Body: "a", GroupID: "g1", DeduplicationID: "dedup-1"})
	require.NoError(t, err)
	m2, err := reg.SendMessage("orders.fifo", SendInput{Body: "b", GroupID: "g1", DeduplicationID: "dedup-1"})
	require.NoError(t, err)
	assert.Equal(t, m1.ID, m2.ID)
}

func TestFifoOrderingAndSingleInFlightPerGroup(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	attrs := DefaultAttributes()
	attrs.FifoQueue = true
	_, err := reg.CreateQueue("strict.fifo", attrs, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := reg.SendMessage("strict.fifo", SendInput{Body: string(rune('a' + i)), GroupID: "g1", DeduplicationID: string(rune('a' + i))})
		require.NoError(t, err)
	}

	first, _, err := reg.ReceiveMessage(context.Background(), "strict.fifo", ReceiveInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	require.Len(t, first, 1, "only the head of an unlocked group is returned, and the group locks after")
	assert.Equal(t, "a", first[0].Body)

	second, _, err := reg.ReceiveMessage(context.Background(), "strict.fifo", ReceiveInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	assert.Empty(t, second, "the group is locked until its in-flight message is deleted or expires")
}

func TestDLQRedriveAfterMaxReceiveCount(t *testing.T) {
	now := time.Now()
	reg, clock := newTestRegistry(now)

	_, err := reg.CreateQueue("dlq", DefaultAttributes(), nil)
	require.NoError(t, err)
	dlq, err := reg.Get("dlq")
	require.NoError(t, err)

	attrs := DefaultAttributes()
	attrs.VisibilityTimeout = 1
	attrs.RedrivePolicy = &RedrivePolicy{DeadLetterTargetArn: dlq.Arn, MaxReceiveCount: 2}
	_, err = reg.CreateQueue("main", attrs, nil)
	require.NoError(t, err)

	_, err = reg.SendMessage("main", SendInput{Body: "poison"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		msgs, _, err := reg.ReceiveMessage(context.Background(), "main", ReceiveInput{MaxNumberOfMessages: 1})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		clock.Now = func() time.Time { return now.Add(time.Duration(i+1) * 2 * time.Second) }
	}

	mainMsgs, _, err := reg.ReceiveMessage(context.Background(), "main", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	assert.Empty(t, mainMsgs, "the message should have been redriven to the DLQ")

	dlqMsgs, _, err := reg.ReceiveMessage(context.Background(), "dlq", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	require.Len(t, dlqMsgs, 1)
	assert.Equal(t, "poison", dlqMsgs[0].Body)
}

func TestLongPollWakesOnSend(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("waiting", DefaultAttributes(), nil)
	require.NoError(t, err)

	done := make(chan []*Message, 1)
	go func() {
		msgs, _, err := reg.ReceiveMessage(context.Background(), "waiting", ReceiveInput{MaxNumberOfMessages: 1, WaitTimeSeconds: 5})
		require.NoError(t, err)
		done <- msgs
	}()

	time.Sleep(50 * time.Millisecond)
	_, err = reg.SendMessage("waiting", SendInput{Body: "woke up"})
	require.NoError(t, err)

	select {
	case msgs := <-done:
		require.Len(t, msgs, 1)
		assert.Equal(t, "woke up", msgs[0].Body)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not wake on send")
	}
}

func TestReceiptHandleInvalidAfterDelete(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("q", DefaultAttributes(), nil)
	require.NoError(t, err)
	_, err = reg.SendMessage("q", SendInput{Body: "x"})
	require.NoError(t, err)

	_, handles, err := reg.ReceiveMessage(context.Background(), "q", ReceiveInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	require.NoError(t, reg.DeleteMessage("q", handles[0]))

	err = reg.DeleteMessage("q", handles[0])
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.ReceiptHandleInvalid, kind)
}

func TestPurgeQueueCooldown(t *testing.T) {
	reg, _ := newTestRegistry(time.Now())
	_, err := reg.CreateQueue("q", DefaultAttributes(), nil)
	require.NoError(t, err)
	require.NoError(t, reg.PurgeQueue("q"))

	err = reg.PurgeQueue("q")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.Conflict, kind)
}
