package sns

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const xmlns = "http://sns.amazonaws.com/doc/2010-03-31/"

// Handler dispatches SNS's AWS Query surface: 15 actions over POST "/",
// action identified by the Action form field. Any other action is
// answered with InvalidAction.
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers SNS's single POST route on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		dispatch.WriteQueryError(w, ErrorTable, apperr.New(apperr.InvalidArgument, "malformed form body"))
		return
	}
	action := dispatch.QueryAction(r)

	var err error
	switch action {
	case "CreateTopic":
		err = h.createTopic(w, r)
	case "DeleteTopic":
		err = h.deleteTopic(w, r)
	case "ListTopics":
		err = h.listTopics(w, r)
	case "GetTopicAttributes":
		err = h.getTopicAttributes(w, r)
	case "SetTopicAttributes":
		err = h.setTopicAttributes(w, r)
	case "TagResource":
		err = h.tagResource(w, r)
	case "UntagResource":
		err = h.untagResource(w, r)
	case "ListTagsForResource":
		err = h.listTagsForResource(w, r)
	case "Subscribe":
		err = h.subscribe(w, r)
	case "ConfirmSubscription":
		err = h.confirmSubscription(w, r)
	case "Unsubscribe":
		err = h.unsubscribe(w, r)
	case "ListSubscriptions":
		err = h.listSubscriptions(w, r)
	case "ListSubscriptionsByTopic":
		err = h.listSubscriptionsByTopic(w, r)
	case "Publish":
		err = h.publish(w, r)
	case "PublishBatch":
		err = h.publishBatch(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "sns").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteQueryError(w, ErrorTable, err)
	}
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) error {
	name := r.FormValue("Name")
	tags := formTags(r.Form, "Tags")
	attrs := map[string]string{}
	for _, n := range formIndices(r.Form, "Attributes.entry") {
		k := formField(r.Form, "Attributes.entry", n, "key")
		attrs[k] = formField(r.Form, "Attributes.entry", n, "value")
	}
	t, err := h.reg.CreateTopic(name, tags, attrs)
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "CreateTopic", xmlns, dispatch.MarshalResult(createTopicResult{TopicArn: t.ARN}))
	return nil
}

func (h *Handler) deleteTopic(w http.ResponseWriter, r *http.Request) error {
	if err := h.reg.DeleteTopic(r.FormValue("TopicArn")); err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "DeleteTopic", xmlns, nil)
	return nil
}

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) error {
	arns := h.reg.ListTopics()
	result := listTopicsResult{}
	for _, arn := range arns {
		result.Topics = append(result.Topics, topicXML{TopicArn: arn})
	}
	dispatch.WriteQueryResult(w, "ListTopics", xmlns, dispatch.MarshalResult(result))
	return nil
}

func (h *Handler) getTopicAttributes(w http.ResponseWriter, r *http.Request) error {
	t, err := h.reg.GetByArn(r.FormValue("TopicArn"))
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "GetTopicAttributes", xmlns, dispatch.MarshalResult(getTopicAttributesResult{
		Attributes: attributesToXML(t.Attributes),
	}))
	return nil
}

func (h *Handler) setTopicAttributes(w http.ResponseWriter, r *http.Request) error {
	err := h.reg.SetTopicAttributes(r.FormValue("TopicArn"), r.FormValue("AttributeName"), r.FormValue("AttributeValue"))
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "SetTopicAttributes", xmlns, nil)
	return nil
}

func (h *Handler) tagResource(w http.ResponseWriter, r *http.Request) error {
	if err := h.reg.TagResource(r.FormValue("ResourceArn"), formTags(r.Form, "Tags")); err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "TagResource", xmlns, nil)
	return nil
}

func (h *Handler) untagResource(w http.ResponseWriter, r *http.Request) error {
	keys := formStrings(r.Form, "TagKeys")
	if err := h.reg.UntagResource(r.FormValue("ResourceArn"), keys); err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "UntagResource", xmlns, nil)
	return nil
}

func (h *Handler) listTagsForResource(w http.ResponseWriter, r *http.Request) error {
	tags, err := h.reg.ListTagsForResource(r.FormValue("ResourceArn"))
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "ListTagsForResource", xmlns, dispatch.MarshalResult(listTagsForResourceResult{
		Tags: tagsToXML(tags),
	}))
	return nil
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) error {
	attrs := map[string]string{}
	for _, n := range formIndices(r.Form, "Attributes.entry") {
		k := formField(r.Form, "Attributes.entry", n, "key")
		attrs[k] = formField(r.Form, "Attributes.entry", n, "value")
	}
	sub, err := h.reg.Subscribe(r.FormValue("TopicArn"), r.FormValue("Protocol"), r.FormValue("Endpoint"), attrs)
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "Subscribe", xmlns, dispatch.MarshalResult(subscribeResult{SubscriptionArn: sub.ARN}))
	return nil
}

func (h *Handler) confirmSubscription(w http.ResponseWriter, r *http.Request) error {
	arn, err := h.reg.ConfirmSubscription(r.FormValue("TopicArn"), r.FormValue("Token"))
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "ConfirmSubscription", xmlns, dispatch.MarshalResult(confirmSubscriptionResult{SubscriptionArn: arn}))
	return nil
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) error {
	if err := h.reg.Unsubscribe(r.FormValue("SubscriptionArn")); err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "Unsubscribe", xmlns, nil)
	return nil
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) error {
	subs := h.reg.ListSubscriptions()
	result := listSubscriptionsResult{}
	for _, s := range subs {
		result.Subscriptions = append(result.Subscriptions, toSubscriptionXML(s))
	}
	dispatch.WriteQueryResult(w, "ListSubscriptions", xmlns, dispatch.MarshalResult(result))
	return nil
}

func (h *Handler) listSubscriptionsByTopic(w http.ResponseWriter, r *http.Request) error {
	subs, err := h.reg.ListSubscriptionsByTopic(r.FormValue("TopicArn"))
	if err != nil {
		return err
	}
	result := listSubscriptionsByTopicResult{}
	for _, s := range subs {
		result.Subscriptions = append(result.Subscriptions, toSubscriptionXML(s))
	}
	dispatch.WriteQueryResult(w, "ListSubscriptionsByTopic", xmlns, dispatch.MarshalResult(result))
	return nil
}

func toSubscriptionXML(s *Subscription) subscriptionXML {
	return subscriptionXML{
		SubscriptionArn: s.ARN,
		TopicArn:        s.TopicArn,
		Protocol:        s.Protocol,
		Endpoint:        s.Endpoint,
	}
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) error {
	id, seq, err := h.reg.Publish(r.FormValue("TopicArn"), PublishInput{
		Message: r.FormValue("Message"),
		Subject: r.FormValue("Subject"),
		GroupID: r.FormValue("MessageGroupId"),
		DeduplicationID: r.FormValue("MessageDeduplicationId"),
	})
	if err != nil {
		return err
	}
	dispatch.WriteQueryResult(w, "Publish", xmlns, dispatch.MarshalResult(publishResult{MessageId: id, SequenceNumber: seq}))
	return nil
}

func (h *Handler) publishBatch(w http.ResponseWriter, r *http.Request) error {
	var entries []PublishBatchEntry
	for _, n := range formIndices(r.Form, "PublishBatchRequestEntries") {
		entries = append(entries, PublishBatchEntry{
			ID:              formField(r.Form, "PublishBatchRequestEntries", n, "Id"),
			Message:         formField(r.Form, "PublishBatchRequestEntries", n, "Message"),
			Subject:         formField(r.Form, "PublishBatchRequestEntries", n, "Subject"),
			GroupID:         formField(r.Form, "PublishBatchRequestEntries", n, "MessageGroupId"),
			DeduplicationID: formField(r.Form, "PublishBatchRequestEntries", n, "MessageDeduplicationId"),
		})
	}
	results, err := h.reg.PublishBatch(r.FormValue("TopicArn"), entries)
	if err != nil {
		return err
	}
	result := publishBatchResultXML{}
	for _, res := range results {
		if res.Err != nil {
			kind, message := apperr.As(res.Err)
			spec := ErrorTable[kind]
			result.Failed = append(result.Failed, publishBatchFailedXML{Id: res.ID, Code: spec.Code, Message: message, SenderFault: true})
			continue
		}
		result.Successful = append(result.Successful, publishBatchSuccessXML{Id: res.ID, MessageId: res.MessageID, SequenceNumber: res.SequenceNumber})
	}
	dispatch.WriteQueryResult(w, "PublishBatch", xmlns, dispatch.MarshalResult(result))
	return nil
}
