package sqs

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

// The AWS JSON protocol carries queue attributes as a flat
// map[string]string, with the two policy attributes JSON-encoded as
// their own string value. This file converts between that wire shape
// and the typed Attributes struct.

func md5Hex(body string) string {
	sum := md5.Sum([]byte(body))
	return hex.EncodeToString(sum[:])
}

func decodeCreateAttrs(wire map[string]string, tags map[string]string) (Attributes, map[string]string) {
	attrs, _ := decodeAttrs(wire, DefaultAttributes())
	return attrs, tags
}

func decodeAttrs(wire map[string]string, base Attributes) (Attributes, error) {
	attrs := base
	for k, v := range wire {
		switch k {
		case "VisibilityTimeout":
			attrs.VisibilityTimeout, _ = strconv.Atoi(v)
		case "MessageRetentionPeriod":
			attrs.MessageRetentionPeriod, _ = strconv.Atoi(v)
		case "DelaySeconds":
			attrs.DelaySeconds, _ = strconv.Atoi(v)
		case "MaximumMessageSize":
			attrs.MaximumMessageSize, _ = strconv.Atoi(v)
		case "ReceiveMessageWaitTimeSeconds":
			attrs.ReceiveMessageWaitTimeSeconds, _ = strconv.Atoi(v)
		case "FifoQueue":
			attrs.FifoQueue = v == "true"
		case "ContentBasedDeduplication":
			attrs.ContentBasedDeduplication = v == "true"
		case "DeduplicationScope":
			attrs.DeduplicationScope = DeduplicationScope(v)
		case "FifoThroughputLimit":
			attrs.FifoThroughputLimit = v
		case "RedrivePolicy":
			var rp RedrivePolicy
			if err := json.Unmarshal([]byte(v), &rp); err != nil {
				return Attributes{}, err
			}
			attrs.RedrivePolicy = &rp
		case "RedriveAllowPolicy":
			var rap RedriveAllowPolicy
			if err := json.Unmarshal([]byte(v), &rap); err != nil {
				return Attributes{}, err
			}
			attrs.RedriveAllowPolicy = &rap
		}
	}
	return attrs, nil
}

func encodeAttrs(snap QueueAttributesSnapshot) map[string]string {
	a := snap.Attrs
	out := map[string]string{
		"VisibilityTimeout":                    strconv.Itoa(a.VisibilityTimeout),
		"MessageRetentionPeriod":                strconv.Itoa(a.MessageRetentionPeriod),
		"DelaySeconds":                          strconv.Itoa(a.DelaySeconds),
		"MaximumMessageSize":                    strconv.Itoa(a.MaximumMessageSize),
		"ReceiveMessageWaitTimeSeconds":         strconv.Itoa(a.ReceiveMessageWaitTimeSeconds),
		"ApproximateNumberOfMessages":           strconv.Itoa(snap.ApproximateNumberOfMessages),
		"ApproximateNumberOfMessagesNotVisible": strconv.Itoa(snap.ApproximateNumberOfMessagesNotVisible),
		"ApproximateNumberOfMessagesDelayed":    strconv.Itoa(snap.ApproximateNumberOfMessagesDelayed),
		"CreatedTimestamp":                      strconv.FormatInt(snap.CreatedTimestamp, 10),
		"QueueArn":                              snap.QueueArn,
	}
	if a.FifoQueue {
		out["FifoQueue"] = "true"
		out["ContentBasedDeduplication"] = strconv.FormatBool(a.ContentBasedDeduplication)
		out["DeduplicationScope"] = string(a.DeduplicationScope)
		out["FifoThroughputLimit"] = a.FifoThroughputLimit
	}
	if a.RedrivePolicy != nil {
		if b, err := json.Marshal(a.RedrivePolicy); err == nil {
			out["RedrivePolicy"] = string(b)
		}
	}
	if a.RedriveAllowPolicy != nil {
		if b, err := json.Marshal(a.RedriveAllowPolicy); err == nil {
			out["RedriveAllowPolicy"] = string(b)
		}
	}
	return out
}

// systemAttrsFor renders a message's system (non-user) attributes the way
// ReceiveMessage's Attributes map does.
func systemAttrsFor(m *Message) map[string]string {
	out := map[string]string{
		"SenderId":                 m.SenderAccountID,
		"SentTimestamp":            strconv.FormatInt(m.SentAt.UnixMilli(), 10),
		"ApproximateReceiveCount":  strconv.Itoa(m.ReceiveCount),
	}
	first := m.SentAt
	if m.FirstReceivedAt != nil {
		first = *m.FirstReceivedAt
	}
	out["ApproximateFirstReceiveTimestamp"] = strconv.FormatInt(firstReceiveMillis(first), 10)
	if m.GroupID != "" {
		out["MessageGroupId"] = m.GroupID
		out["MessageDeduplicationId"] = m.DeduplicationID
		out["SequenceNumber"] = m.SequenceNumber
	}
	return out
}

func firstReceiveMillis(t time.Time) int64 {
	return t.UnixMilli()
}
