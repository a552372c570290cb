package sqs

import (
	"strconv"
	"sync"
	"time"

	"github.com/nimbusemu/nimbus/internal/identity"
)

// Queue is the per-queue state the Registry hands out one lock per
// (spec.md §4.2: "protected by a per-queue lock, not a global lock").
type Queue struct {
	mu sync.Mutex

	Name      string
	Arn       string
	CreatedAt time.Time
	Attrs     Attributes
	Tags      map[string]string
	Policy    map[string]PermissionLabel

	messages map[string]*Message
	order    []string // standard queues: send order, filtered lazily on scan
	groups   map[string]*group
	groupOrder []string // order groups were first seen in, for "oldest unlocked group first"

	dedupIndex map[string]dedupEntry
	receiveCache map[string]receiveCacheEntry

	waiters []*waiter

	nextSeq int64
	nextGen int64

	purgedAt time.Time

	moveTask *MoveTask
}

func newQueue(name, arn string, attrs Attributes, tags map[string]string, now time.Time) *Queue {
	if tags == nil {
		tags = map[string]string{}
	}
	return &Queue{
		Name:         name,
		Arn:          arn,
		CreatedAt:    now,
		Attrs:        attrs,
		Tags:         tags,
		Policy:       map[string]PermissionLabel{},
		messages:     map[string]*Message{},
		groups:       map[string]*group{},
		dedupIndex:   map[string]dedupEntry{},
		receiveCache: map[string]receiveCacheEntry{},
	}
}

// IsFifo reports whether this queue is a FIFO queue.
func (q *Queue) IsFifo() bool {
	return q.Attrs.FifoQueue
}

// approximateVisible counts messages currently in the Visible state,
// used by GetQueueAttributes' ApproximateNumberOfMessages.
func (q *Queue) approximateVisible(now time.Time) int {
	n := 0
	for _, id := range q.order {
		m, ok := q.messages[id]
		if !ok {
			continue
		}
		if m.State(now) == StateVisible {
			n++
		}
	}
	return n
}

func (q *Queue) approximateInFlight(now time.Time) int {
	n := 0
	for _, id := range q.order {
		m, ok := q.messages[id]
		if !ok {
			continue
		}
		if m.State(now) == StateInFlight {
			n++
		}
	}
	return n
}

func (q *Queue) approximateDelayed(now time.Time) int {
	n := 0
	for _, id := range q.order {
		m, ok := q.messages[id]
		if !ok {
			continue
		}
		if m.State(now) == StateDelayed {
			n++
		}
	}
	return n
}

// inflightCap returns the per-queue inflight resource cap (spec.md §5).
func (q *Queue) inflightCap() int {
	if q.IsFifo() {
		return 20000
	}
	return 120000
}

func newReceiptHandle(queueName, messageID string, generation int64) string {
	return queueName + "/" + messageID + "/" + strconv.FormatInt(generation, 10) + "/" + identity.NewID()
}
