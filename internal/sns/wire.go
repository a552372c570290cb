package sns

import (
	"encoding/xml"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// AWS Query list encoding is "<prefix>.member.<N>.<Field>"; formIndices
// returns the sorted set of N values present under prefix.
func formIndices(form url.Values, prefix string) []int {
	seen := map[int]bool{}
	marker := prefix + ".member."
	for key := range form {
		if !strings.HasPrefix(key, marker) {
			continue
		}
		rest := strings.TrimPrefix(key, marker)
		idx := strings.Index(rest, ".")
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(rest[:idx])
		if err != nil {
			continue
		}
		seen[n] = true
	}
	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	return indices
}

func formField(form url.Values, prefix string, n int, field string) string {
	return form.Get(prefix + ".member." + strconv.Itoa(n) + "." + field)
}

// formTags parses a Tags.member.N.{Key,Value} list into a map.
func formTags(form url.Values, prefix string) map[string]string {
	out := map[string]string{}
	for _, n := range formIndices(form, prefix) {
		k := formField(form, prefix, n, "Key")
		if k == "" {
			continue
		}
		out[k] = formField(form, prefix, n, "Value")
	}
	return out
}

// formStrings parses a simple "<prefix>.member.N" string list.
func formStrings(form url.Values, prefix string) []string {
	var out []string
	marker := prefix + ".member."
	indices := map[int]bool{}
	for key := range form {
		if !strings.HasPrefix(key, marker) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, marker))
		if err != nil {
			continue
		}
		indices[n] = true
	}
	ns := make([]int, 0, len(indices))
	for n := range indices {
		ns = append(ns, n)
	}
	sort.Ints(ns)
	for _, n := range ns {
		out = append(out, form.Get(marker+strconv.Itoa(n)))
	}
	return out
}

type topicXML struct {
	TopicArn string `xml:"TopicArn"`
}

type createTopicResult struct {
	XMLName  xml.Name `xml:"CreateTopicResult"`
	TopicArn string   `xml:"TopicArn"`
}

type listTopicsResult struct {
	XMLName xml.Name   `xml:"ListTopicsResult"`
	Topics  []topicXML `xml:"Topics>member"`
}

type attributeEntryXML struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

type getTopicAttributesResult struct {
	XMLName    xml.Name            `xml:"GetTopicAttributesResult"`
	Attributes []attributeEntryXML `xml:"Attributes>entry"`
}

func attributesToXML(attrs map[string]string) []attributeEntryXML {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]attributeEntryXML, 0, len(keys))
	for _, k := range keys {
		out = append(out, attributeEntryXML{Key: k, Value: attrs[k]})
	}
	return out
}

type tagXML struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

type listTagsForResourceResult struct {
	XMLName xml.Name `xml:"ListTagsForResourceResult"`
	Tags    []tagXML `xml:"Tags>member"`
}

func tagsToXML(tags map[string]string) []tagXML {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]tagXML, 0, len(keys))
	for _, k := range keys {
		out = append(out, tagXML{Key: k, Value: tags[k]})
	}
	return out
}

type subscribeResult struct {
	XMLName         xml.Name `xml:"SubscribeResult"`
	SubscriptionArn string   `xml:"SubscriptionArn"`
}

type confirmSubscriptionResult struct {
	XMLName         xml.Name `xml:"ConfirmSubscriptionResult"`
	SubscriptionArn string   `xml:"SubscriptionArn"`
}

type subscriptionXML struct {
	SubscriptionArn string `xml:"SubscriptionArn"`
	TopicArn        string `xml:"TopicArn"`
	Protocol        string `xml:"Protocol"`
	Endpoint        string `xml:"Endpoint"`
	Owner           string `xml:"Owner"`
}

type listSubscriptionsResult struct {
	XMLName       xml.Name          `xml:"ListSubscriptionsResult"`
	Subscriptions []subscriptionXML `xml:"Subscriptions>member"`
}

type listSubscriptionsByTopicResult struct {
	XMLName       xml.Name          `xml:"ListSubscriptionsByTopicResult"`
	Subscriptions []subscriptionXML `xml:"Subscriptions>member"`
}

type publishResult struct {
	XMLName        xml.Name `xml:"PublishResult"`
	MessageId      string   `xml:"MessageId"`
	SequenceNumber string   `xml:"SequenceNumber,omitempty"`
}

type publishBatchSuccessXML struct {
	Id             string `xml:"Id"`
	MessageId      string `xml:"MessageId"`
	SequenceNumber string `xml:"SequenceNumber,omitempty"`
}

type publishBatchFailedXML struct {
	Id          string `xml:"Id"`
	Code        string `xml:"Code"`
	Message     string `xml:"Message"`
	SenderFault bool   `xml:"SenderFault"`
}

type publishBatchResultXML struct {
	XMLName    xml.Name                 `xml:"PublishBatchResult"`
	Successful []publishBatchSuccessXML `xml:"Successful>member"`
	Failed     []publishBatchFailedXML  `xml:"Failed>member"`
}
