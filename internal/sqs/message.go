package sqs

import (
	"context"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// SendInput carries one SendMessage's decoded fields.
type SendInput struct {
	Body                   string
	Attributes             map[string]MessageAttributeValue
	DelaySeconds           *int
	GroupID                string
	DeduplicationID        string
	SenderAccountID        string
}

// SendMessage implements spec.md §4.2 SendMessage.
func (r *Registry) SendMessage(queueName string, in SendInput) (*Message, error) {
	q, err := r.Get(queueName)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(in.Body) > q.Attrs.MaximumMessageSize {
		return nil, apperr.Newf(apperr.InvalidArgument, "message body exceeds MaximumMessageSize (%d)", q.Attrs.MaximumMessageSize)
	}

	now := r.now()

	if q.IsFifo() {
		if in.GroupID == "" {
			return nil, apperr.New(apperr.InvalidArgument, "MessageGroupId is required for FIFO queues")
		}
		dedupID := in.DeduplicationID
		if dedupID == "" {
			if !q.Attrs.ContentBasedDeduplication {
				return nil, apperr.New(apperr.InvalidArgument, "MessageDeduplicationId is required unless ContentBasedDeduplication is set")
			}
			dedupID = identity.SHA256Hex([]byte(in.Body))
		}

		dedupKey := dedupID
		if q.Attrs.DeduplicationScope == ScopeMessageGroup {
			dedupKey = in.GroupID + "#" + dedupID
		}
		purgeDedupIndex(q, now)
		if entry, ok := q.dedupIndex[dedupKey]; ok && now.Sub(entry.insertedAt) <= dedupWindow {
			if existing, ok := q.messages[entry.messageID]; ok {
				return existing, nil
			}
		}

		msg := &Message{
			ID:                identity.NewID(),
			Body:              in.Body,
			MessageAttributes: in.Attributes,
			SystemAttributes:  map[string]string{},
			SentAt:            now,
			SenderAccountID:   in.SenderAccountID,
			GroupID:           in.GroupID,
			DeduplicationID:   dedupID,
			VisibleAt:         now,
		}
		q.nextSeq++
		msg.SequenceNumber = sequenceString(q.nextSeq)

		q.messages[msg.ID] = msg
		q.order = append(q.order, msg.ID)
		g, ok := q.groups[in.GroupID]
		if !ok {
			g = &group{}
			q.groups[in.GroupID] = g
			q.groupOrder = append(q.groupOrder, in.GroupID)
		}
		g.messageIDs = append(g.messageIDs, msg.ID)
		q.dedupIndex[dedupKey] = dedupEntry{messageID: msg.ID, insertedAt: now}

		q.signalWaiters()
		return msg, nil
	}

	delay := q.Attrs.DelaySeconds
	if in.DelaySeconds != nil {
		delay = *in.DelaySeconds
	}

	msg := &Message{
		ID:                identity.NewID(),
		Body:              in.Body,
		MessageAttributes: in.Attributes,
		SystemAttributes:  map[string]string{},
		SentAt:            now,
		SenderAccountID:   in.SenderAccountID,
		VisibleAt:         now.Add(time.Duration(delay) * time.Second),
	}
	q.messages[msg.ID] = msg
	q.order = append(q.order, msg.ID)

	q.signalWaiters()
	return msg, nil
}

func purgeDedupIndex(q *Queue, now time.Time) {
	for k, v := range q.dedupIndex {
		if now.Sub(v.insertedAt) > dedupWindow {
			delete(q.dedupIndex, k)
		}
	}
}

func sequenceString(n int64) string {
	// SQS sequence numbers are 20-digit zero-padded decimal strings.
	s := make([]byte, 20)
	for i := 19; i >= 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}

// promoteExpired transitions expired in-flight messages back to Visible
// (or redrives them to dlq if configured), per spec.md §4.2 "Visibility
// expiry"/"DLQ redrive". Callers must hold q.mu and, if dlq != nil,
// dlq.mu too (see lockOrdered).
func (r *Registry) promoteExpired(q *Queue, dlq *Queue, rp *RedrivePolicy, now time.Time) {
	var redrive []string
	promoted := false
	for _, id := range q.order {
		m, ok := q.messages[id]
		if !ok || m.ReceiptHandle == "" || now.Before(m.VisibleAt) {
			continue
		}
		// Expired in-flight: this message just transitioned InFlight -> Visible.
		if rp != nil && dlq != nil && m.ReceiveCount >= rp.MaxReceiveCount {
			redrive = append(redrive, id)
			continue
		}
		m.ReceiptHandle = ""
		promoted = true
		if q.IsFifo() {
			if g, ok := q.groups[m.GroupID]; ok && g.inFlightCount > 0 {
				g.inFlightCount--
			}
		}
	}
	if promoted {
		q.signalWaiters()
	}

	for _, id := range redrive {
		r.redriveOne(q, dlq, id, now)
	}
	if len(redrive) > 0 {
		dlq.signalWaiters()
	}
}

func (r *Registry) redriveOne(q, dlq *Queue, id string, now time.Time) {
	m, ok := q.messages[id]
	if !ok {
		return
	}
	removeMessage(q, m)

	moved := &Message{
		ID:                m.ID,
		Body:              m.Body,
		MessageAttributes: m.MessageAttributes,
		SystemAttributes:  m.SystemAttributes,
		SentAt:            now,
		SenderAccountID:   m.SenderAccountID,
		VisibleAt:         now,
	}
	if dlq.IsFifo() {
		moved.GroupID = m.GroupID
		moved.DeduplicationID = m.DeduplicationID
		dlq.nextSeq++
		moved.SequenceNumber = sequenceString(dlq.nextSeq)
	}
	dlq.messages[moved.ID] = moved
	dlq.order = append(dlq.order, moved.ID)
	if dlq.IsFifo() {
		g, ok := dlq.groups[moved.GroupID]
		if !ok {
			g = &group{}
			dlq.groups[moved.GroupID] = g
			dlq.groupOrder = append(dlq.groupOrder, moved.GroupID)
		}
		g.messageIDs = append(g.messageIDs, moved.ID)
	}
}

// removeMessage deletes m from q's indices (messages/order/groups).
// Callers must hold q.mu.
func removeMessage(q *Queue, m *Message) {
	delete(q.messages, m.ID)
	for i, id := range q.order {
		if id == m.ID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	if q.IsFifo() {
		if g, ok := q.groups[m.GroupID]; ok {
			for i, id := range g.messageIDs {
				if id == m.ID {
					g.messageIDs = append(g.messageIDs[:i], g.messageIDs[i+1:]...)
					break
				}
			}
		}
	}
}

// ReceiveInput carries one ReceiveMessage's decoded fields.
type ReceiveInput struct {
	MaxNumberOfMessages int
	VisibilityTimeout   *int
	WaitTimeSeconds      int
	ReceiveRequestAttemptID string
}

// ReceiveMessage implements spec.md §4.2 ReceiveMessage, including lazy
// visibility/retention expiry, DLQ redrive, FIFO group locking, the
// ReceiveRequestAttemptId idempotency cache, and long polling.
func (r *Registry) ReceiveMessage(ctx context.Context, queueName string, in ReceiveInput) ([]*Message, []string, error) {
	q, err := r.Get(queueName)
	if err != nil {
		return nil, nil, err
	}

	selected, handles, waited, err := r.attemptReceive(q, in)
	if err != nil {
		return nil, nil, err
	}
	if len(selected) > 0 || in.WaitTimeSeconds <= 0 || waited {
		return selected, handles, nil
	}

	deadline := r.now().Add(time.Duration(in.WaitTimeSeconds) * time.Second)
	q.mu.Lock()
	w := q.registerWaiter(deadline)
	q.mu.Unlock()

	q.wait(ctx, w)

	selected, handles, _, err = r.attemptReceive(q, in)
	if err != nil {
		return nil, nil, err
	}
	return selected, handles, nil
}

// attemptReceive performs one selection pass (no waiting). The third
// return value is read by ReceiveMessage to skip the long-poll wait, but
// every return path currently sets it to false.
func (r *Registry) attemptReceive(q *Queue, in ReceiveInput) ([]*Message, []string, bool, error) {
	q.mu.Lock()
	rp := q.Attrs.RedrivePolicy
	q.mu.Unlock()

	var dlq *Queue
	if rp != nil {
		dlq, _ = r.GetByArn(rp.DeadLetterTargetArn)
	}

	var unlock func()
	if dlq != nil {
		unlock = lockOrdered(q, dlq)
	} else {
		q.mu.Lock()
		unlock = q.mu.Unlock
	}
	defer unlock()

	now := r.now()
	r.promoteExpired(q, dlq, rp, now)
	dropExpiredRetention(q, now)

	if in.ReceiveRequestAttemptID != "" {
		purgeReceiveCache(q, now)
		if cached, ok := q.receiveCache[in.ReceiveRequestAttemptID]; ok {
			var msgs []*Message
			for _, id := range cached.messageIDs {
				if m, ok := q.messages[id]; ok {
					msgs = append(msgs, m)
				}
			}
			return msgs, cached.receiptHandles, false, nil
		}
	}

	if q.approximateInFlightLocked(now) >= q.inflightCap() {
		return nil, nil, false, apperr.New(apperr.OverLimit, "the queue's in-flight message limit has been reached")
	}

	max := in.MaxNumberOfMessages
	if max <= 0 {
		max = 1
	}

	visTimeout := q.Attrs.VisibilityTimeout
	if in.VisibilityTimeout != nil {
		visTimeout = *in.VisibilityTimeout
	}

	var selected []*Message
	if q.IsFifo() {
		selected = selectFifo(q, max)
	} else {
		selected = selectStandard(q, now, max)
	}

	var handles []string
	for _, m := range selected {
		q.nextGen++
		handle := newReceiptHandle(q.Name, m.ID, q.nextGen)
		m.ReceiptHandle = handle
		m.Generation = q.nextGen
		m.VisibleAt = now.Add(time.Duration(visTimeout) * time.Second)
		m.ReceiveCount++
		if m.FirstReceivedAt == nil {
			t := now
			m.FirstReceivedAt = &t
		}
		handles = append(handles, handle)
	}

	if in.ReceiveRequestAttemptID != "" {
		var ids []string
		for _, m := range selected {
			ids = append(ids, m.ID)
		}
		q.receiveCache[in.ReceiveRequestAttemptID] = receiveCacheEntry{
			messageIDs:     ids,
			receiptHandles: handles,
			insertedAt:     now,
		}
	}

	return selected, handles, false, nil
}

// dropExpiredRetention removes messages whose retention window has
// elapsed, per spec.md §5 "retention expiry is also lazy". Callers must
// hold q.mu.
func dropExpiredRetention(q *Queue, now time.Time) {
	retention := time.Duration(q.Attrs.MessageRetentionPeriod) * time.Second
	var expired []*Message
	for _, id := range q.order {
		m, ok := q.messages[id]
		if !ok {
			continue
		}
		if now.Sub(m.SentAt) >= retention {
			expired = append(expired, m)
		}
	}
	for _, m := range expired {
		removeMessage(q, m)
	}
}

func purgeReceiveCache(q *Queue, now time.Time) {
	for k, v := range q.receiveCache {
		if now.Sub(v.insertedAt) > dedupWindow {
			delete(q.receiveCache, k)
		}
	}
}

func (q *Queue) approximateInFlightLocked(now time.Time) int {
	return q.approximateInFlight(now)
}

func selectStandard(q *Queue, now time.Time, max int) []*Message {
	var out []*Message
	for _, id := range q.order {
		if len(out) >= max {
			break
		}
		m, ok := q.messages[id]
		if !ok || m.State(now) != StateVisible {
			continue
		}
		out = append(out, m)
	}
	return out
}

func selectFifo(q *Queue, max int) []*Message {
	var out []*Message
	for _, groupID := range q.groupOrder {
		if len(out) >= max {
			break
		}
		g, ok := q.groups[groupID]
		if !ok || g.locked() || len(g.messageIDs) == 0 {
			continue
		}
		headID := g.messageIDs[0]
		m, ok := q.messages[headID]
		if !ok {
			continue
		}
		g.inFlightCount++
		out = append(out, m)
	}
	return out
}

// DeleteMessage implements spec.md §4.2 DeleteMessage.
func (r *Registry) DeleteMessage(queueName, receiptHandle string) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := resolveHandle(q, receiptHandle)
	if err != nil {
		return err
	}
	removeMessage(q, m)
	if q.IsFifo() {
		if g, ok := q.groups[m.GroupID]; ok && g.inFlightCount > 0 {
			g.inFlightCount--
		}
	}
	return nil
}

// ChangeMessageVisibility implements spec.md §4.2 ChangeMessageVisibility.
func (r *Registry) ChangeMessageVisibility(queueName, receiptHandle string, newTimeout int) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	m, err := resolveHandle(q, receiptHandle)
	if err != nil {
		return err
	}

	now := r.now()
	if newTimeout == 0 {
		m.ReceiptHandle = ""
		m.VisibleAt = now
		if q.IsFifo() {
			if g, ok := q.groups[m.GroupID]; ok && g.inFlightCount > 0 {
				g.inFlightCount--
			}
		}
		q.signalWaiters()
		return nil
	}
	m.VisibleAt = now.Add(time.Duration(newTimeout) * time.Second)
	return nil
}

// resolveHandle looks up the message a receipt handle refers to and
// validates it's still the current handle for that message, per
// spec.md's "receipt handle... invalidated when its delivery's
// visibility window ends" and design notes on detecting staleness by
// comparison rather than scanning an active set.
func resolveHandle(q *Queue, receiptHandle string) (*Message, error) {
	id := messageIDFromHandle(receiptHandle)
	if id == "" {
		return nil, apperr.New(apperr.ReceiptHandleInvalid, "ReceiptHandleIsInvalid")
	}
	m, ok := q.messages[id]
	if !ok || m.ReceiptHandle == "" || m.ReceiptHandle != receiptHandle {
		return nil, apperr.New(apperr.ReceiptHandleInvalid, "ReceiptHandleIsInvalid")
	}
	return m, nil
}

func messageIDFromHandle(handle string) string {
	// handle shape: "<queueName>/<messageID>/<generation>/<nonce>"
	parts := splitN(handle, '/', 4)
	if len(parts) != 4 {
		return ""
	}
	return parts[1]
}

func splitN(s string, sep byte, n int) []string {
	var out []string
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// PurgeQueue implements spec.md §4.2 PurgeQueue, including the 60s purge
// cooldown.
func (r *Registry) PurgeQueue(queueName string) error {
	q, err := r.Get(queueName)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := r.now()
	if !q.purgedAt.IsZero() && now.Sub(q.purgedAt) < 60*time.Second {
		return apperr.New(apperr.Conflict, "PurgeQueueInProgress")
	}

	q.messages = map[string]*Message{}
	q.order = nil
	q.groups = map[string]*group{}
	q.groupOrder = nil
	q.dedupIndex = map[string]dedupEntry{}
	q.receiveCache = map[string]receiveCacheEntry{}
	q.purgedAt = now
	return nil
}
