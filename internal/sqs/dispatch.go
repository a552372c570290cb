package sqs

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

// contentType is the AWS JSON 1.0 content type SQS expects on responses
// (spec.md §6.2).
const contentType = "application/x-amz-json-1.0"

// Handler dispatches 22 AmazonSQS.* actions over the AWS JSON 1.0
// protocol; any other action is answered as an unsupported operation.
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers the single POST / entry point AWS JSON services use; the
// action is carried in the X-Amz-Target header, not the path.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, action, ok := dispatch.JSONTarget(r)
	if !ok {
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.sqs", ErrorTable, apperr.New(apperr.InvalidArgument, "missing or malformed X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateQueue":
		err = h.createQueue(w, r)
	case "DeleteQueue":
		err = h.deleteQueue(w, r)
	case "ListQueues":
		err = h.listQueues(w, r)
	case "GetQueueUrl":
		err = h.getQueueUrl(w, r)
	case "GetQueueAttributes":
		err = h.getQueueAttributes(w, r)
	case "SetQueueAttributes":
		err = h.setQueueAttributes(w, r)
	case "TagQueue":
		err = h.tagQueue(w, r)
	case "UntagQueue":
		err = h.untagQueue(w, r)
	case "ListQueueTags":
		err = h.listQueueTags(w, r)
	case "SendMessage":
		err = h.sendMessage(w, r)
	case "SendMessageBatch":
		err = h.sendMessageBatch(w, r)
	case "ReceiveMessage":
		err = h.receiveMessage(w, r)
	case "DeleteMessage":
		err = h.deleteMessage(w, r)
	case "DeleteMessageBatch":
		err = h.deleteMessageBatch(w, r)
	case "ChangeMessageVisibility":
		err = h.changeMessageVisibility(w, r)
	case "ChangeMessageVisibilityBatch":
		err = h.changeMessageVisibilityBatch(w, r)
	case "PurgeQueue":
		err = h.purgeQueue(w, r)
	case "AddPermission":
		err = h.addPermission(w, r)
	case "RemovePermission":
		err = h.removePermission(w, r)
	case "StartMessageMoveTask":
		err = h.startMessageMoveTask(w, r)
	case "ListMessageMoveTasks":
		err = h.listMessageMoveTasks(w, r)
	case "CancelMessageMoveTask":
		err = h.cancelMessageMoveTask(w, r)
	default:
		err = apperr.Newf(apperr.UnsupportedOperation, "unknown SQS action %q", action)
	}

	if err != nil {
		kind, _, _ := ErrorTable.Lookup(err)
		log.Debug().Str("service", "sqs").Str("action", action).Str("kind", string(kind)).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.sqs", ErrorTable, err)
	}
}

// queueNameFromURL extracts the queue name from a QueueUrl of the shape
// http://host/accountId/name, matching identity.QueueURL.
func queueNameFromURL(queueURL string) string {
	parts := strings.Split(strings.TrimPrefix(queueURL, "http://"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func (h *Handler) createQueue(w http.ResponseWriter, r *http.Request) error {
	var req createQueueRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	attrs, tags := decodeCreateAttrs(req.Attributes, req.Tags)
	q, err := h.reg.CreateQueue(req.QueueName, attrs, tags)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, createQueueResponse{QueueUrl: h.reg.QueueURL(q.Name)})
	return nil
}

func (h *Handler) deleteQueue(w http.ResponseWriter, r *http.Request) error {
	var req deleteQueueRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.DeleteQueue(queueNameFromURL(req.QueueUrl)); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) listQueues(w http.ResponseWriter, r *http.Request) error {
	var req listQueuesRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	names := h.reg.ListQueues(req.QueueNamePrefix)
	urls := make([]string, 0, len(names))
	for _, n := range names {
		urls = append(urls, h.reg.QueueURL(n))
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, listQueuesResponse{QueueUrls: urls})
	return nil
}

func (h *Handler) getQueueUrl(w http.ResponseWriter, r *http.Request) error {
	var req queueURLRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if _, err := h.reg.Get(req.QueueName); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, getQueueUrlResponse{QueueUrl: h.reg.QueueURL(req.QueueName)})
	return nil
}

func (h *Handler) getQueueAttributes(w http.ResponseWriter, r *http.Request) error {
	var req getQueueAttributesRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	snap, err := h.reg.GetQueueAttributes(queueNameFromURL(req.QueueUrl))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, getQueueAttributesResponse{Attributes: encodeAttrs(snap)})
	return nil
}

func (h *Handler) setQueueAttributes(w http.ResponseWriter, r *http.Request) error {
	var req setQueueAttributesRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	name := queueNameFromURL(req.QueueUrl)
	existing, err := h.reg.GetQueueAttributes(name)
	if err != nil {
		return err
	}
	attrs, err := decodeAttrs(req.Attributes, existing.Attrs)
	if err != nil {
		return err
	}
	if err := h.reg.SetQueueAttributes(name, attrs); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) tagQueue(w http.ResponseWriter, r *http.Request) error {
	var req tagQueueRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.TagQueue(queueNameFromURL(req.QueueUrl), req.Tags); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) untagQueue(w http.ResponseWriter, r *http.Request) error {
	var req untagQueueRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.UntagQueue(queueNameFromURL(req.QueueUrl), req.TagKeys); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) listQueueTags(w http.ResponseWriter, r *http.Request) error {
	var req listQueueTagsRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	tags, err := h.reg.ListQueueTags(queueNameFromURL(req.QueueUrl))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, listQueueTagsResponse{Tags: tags})
	return nil
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) error {
	var req sendMessageRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	msg, err := h.reg.SendMessage(queueNameFromURL(req.QueueUrl), SendInput{
		Body:            req.MessageBody,
		Attributes:      fromWireAttrs(req.MessageAttributes),
		DelaySeconds:    req.DelaySeconds,
		GroupID:         req.MessageGroupId,
		DeduplicationID: req.MessageDeduplicationId,
	})
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, sendMessageResponse{
		MessageId:        msg.ID,
		MD5OfMessageBody: md5Hex(msg.Body),
		SequenceNumber:   msg.SequenceNumber,
	})
	return nil
}

func (h *Handler) sendMessageBatch(w http.ResponseWriter, r *http.Request) error {
	var req sendMessageBatchRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	entries := make([]SendBatchEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, SendBatchEntry{
			ID: e.Id,
			Send: SendInput{
				Body:            e.MessageBody,
				Attributes:      fromWireAttrs(e.MessageAttributes),
				DelaySeconds:    e.DelaySeconds,
				GroupID:         e.MessageGroupId,
				DeduplicationID: e.MessageDeduplicationId,
			},
		})
	}
	results, failed, err := h.reg.SendMessageBatch(queueNameFromURL(req.QueueUrl), entries)
	if err != nil {
		return err
	}
	resp := sendMessageBatchResponse{Failed: toBatchResultErrors(failed)}
	for _, res := range results {
		resp.Successful = append(resp.Successful, sendMessageBatchResultEntry{
			Id:               res.ID,
			MessageId:        res.Message.ID,
			MD5OfMessageBody: md5Hex(res.Message.Body),
			SequenceNumber:   res.Message.SequenceNumber,
		})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, resp)
	return nil
}

func (h *Handler) receiveMessage(w http.ResponseWriter, r *http.Request) error {
	var req receiveMessageRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	msgs, handles, err := h.reg.ReceiveMessage(r.Context(), queueNameFromURL(req.QueueUrl), ReceiveInput{
		MaxNumberOfMessages:     req.MaxNumberOfMessages,
		VisibilityTimeout:       req.VisibilityTimeout,
		WaitTimeSeconds:         req.WaitTimeSeconds,
		ReceiveRequestAttemptID: req.ReceiveRequestAttemptId,
	})
	if err != nil {
		return err
	}
	resp := receiveMessageResponse{}
	for i, m := range msgs {
		resp.Messages = append(resp.Messages, wireMessage{
			MessageId:         m.ID,
			ReceiptHandle:     handles[i],
			MD5OfBody:         md5Hex(m.Body),
			Body:              m.Body,
			Attributes:        systemAttrsFor(m),
			MessageAttributes: toWireAttrs(m.MessageAttributes),
		})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, resp)
	return nil
}

func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) error {
	var req deleteMessageRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.DeleteMessage(queueNameFromURL(req.QueueUrl), req.ReceiptHandle); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) deleteMessageBatch(w http.ResponseWriter, r *http.Request) error {
	var req deleteMessageBatchRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	entries := make(map[string]string, len(req.Entries))
	for _, e := range req.Entries {
		entries[e.Id] = e.ReceiptHandle
	}
	succeeded, failed := h.reg.DeleteMessageBatch(queueNameFromURL(req.QueueUrl), entries)
	resp := deleteMessageBatchResponse{Failed: toBatchResultErrors(failed)}
	for _, id := range succeeded {
		resp.Successful = append(resp.Successful, deleteMessageBatchResultEntry{Id: id})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, resp)
	return nil
}

func (h *Handler) changeMessageVisibility(w http.ResponseWriter, r *http.Request) error {
	var req changeMessageVisibilityRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.ChangeMessageVisibility(queueNameFromURL(req.QueueUrl), req.ReceiptHandle, req.VisibilityTimeout); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) changeMessageVisibilityBatch(w http.ResponseWriter, r *http.Request) error {
	var req changeMessageVisibilityBatchRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	entries := make(map[string]struct {
		ReceiptHandle string
		Timeout       int
	}, len(req.Entries))
	for _, e := range req.Entries {
		entries[e.Id] = struct {
			ReceiptHandle string
			Timeout       int
		}{ReceiptHandle: e.ReceiptHandle, Timeout: e.VisibilityTimeout}
	}
	succeeded, failed := h.reg.ChangeMessageVisibilityBatch(queueNameFromURL(req.QueueUrl), entries)
	resp := changeMessageVisibilityBatchResponse{Failed: toBatchResultErrors(failed)}
	for _, id := range succeeded {
		resp.Successful = append(resp.Successful, deleteMessageBatchResultEntry{Id: id})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, resp)
	return nil
}

func (h *Handler) purgeQueue(w http.ResponseWriter, r *http.Request) error {
	var req purgeQueueRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.PurgeQueue(queueNameFromURL(req.QueueUrl)); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) addPermission(w http.ResponseWriter, r *http.Request) error {
	var req addPermissionRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	err := h.reg.SetPermissionLabel(queueNameFromURL(req.QueueUrl), req.Label, PermissionLabel{
		Accounts: req.AWSAccountIds,
		Actions:  req.Actions,
	})
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) removePermission(w http.ResponseWriter, r *http.Request) error {
	var req removePermissionRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.reg.RemovePermissionLabel(queueNameFromURL(req.QueueUrl), req.Label); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, struct{}{})
	return nil
}

func (h *Handler) startMessageMoveTask(w http.ResponseWriter, r *http.Request) error {
	var req startMessageMoveTaskRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	task, err := h.reg.StartMessageMoveTask(req.SourceArn, req.DestinationArn, req.MaxNumberOfMessagesPerSecond)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, startMessageMoveTaskResponse{TaskHandle: task.Handle})
	return nil
}

func (h *Handler) listMessageMoveTasks(w http.ResponseWriter, r *http.Request) error {
	var req listMessageMoveTasksRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	tasks, err := h.reg.ListMessageMoveTasks(req.SourceArn)
	if err != nil {
		return err
	}
	resp := listMessageMoveTasksResponse{}
	for _, t := range tasks {
		resp.Results = append(resp.Results, wireMoveTask{
			TaskHandle:                       t.Handle,
			Status:                           string(t.Status()),
			SourceArn:                        t.SourceArn,
			DestinationArn:                   t.DestinationArn,
			MaxNumberOfMessagesPerSecond:     t.MaxNumberOfMessagesPerSecond,
			ApproximateNumberOfMessagesMoved: t.MovedCount(),
		})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, resp)
	return nil
}

func (h *Handler) cancelMessageMoveTask(w http.ResponseWriter, r *http.Request) error {
	var req cancelMessageMoveTaskRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return err
	}
	task, err := h.reg.CancelMessageMoveTask(req.TaskHandle)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, cancelMessageMoveTaskResponse{ApproximateNumberOfMessagesMoved: task.MovedCount()})
	return nil
}

func toBatchResultErrors(in []BatchEntryError) []batchResultErrorEntry {
	if len(in) == 0 {
		return nil
	}
	out := make([]batchResultErrorEntry, 0, len(in))
	for _, e := range in {
		out = append(out, batchResultErrorEntry{Id: e.ID, SenderFault: e.SenderFault, Code: e.Code, Message: e.Message})
	}
	return out
}
