package sqs

// Wire request/response shapes for the AWS JSON 1.0 SQS protocol
// (spec.md §6.2). Field names/casing follow the real SQS API so that an
// unmodified AWS SDK can talk to this emulator.

type wireMessageAttributeValue struct {
	DataType    string `json:"DataType"`
	StringValue string `json:"StringValue,omitempty"`
	BinaryValue []byte `json:"BinaryValue,omitempty"`
}

func toWireAttrs(in map[string]MessageAttributeValue) map[string]wireMessageAttributeValue {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]wireMessageAttributeValue, len(in))
	for k, v := range in {
		out[k] = wireMessageAttributeValue{DataType: v.DataType, StringValue: v.StringValue, BinaryValue: v.BinaryValue}
	}
	return out
}

func fromWireAttrs(in map[string]wireMessageAttributeValue) map[string]MessageAttributeValue {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]MessageAttributeValue, len(in))
	for k, v := range in {
		out[k] = MessageAttributeValue{DataType: v.DataType, StringValue: v.StringValue, BinaryValue: v.BinaryValue}
	}
	return out
}

type createQueueRequest struct {
	QueueName  string            `json:"QueueName"`
	Attributes map[string]string `json:"Attributes,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

type createQueueResponse struct {
	QueueUrl string `json:"QueueUrl"`
}

type queueURLRequest struct {
	QueueUrl  string `json:"QueueUrl"`
	QueueName string `json:"QueueName,omitempty"`
}

type getQueueUrlResponse struct {
	QueueUrl string `json:"QueueUrl"`
}

type listQueuesRequest struct {
	QueueNamePrefix string `json:"QueueNamePrefix,omitempty"`
}

type listQueuesResponse struct {
	QueueUrls []string `json:"QueueUrls"`
}

type getQueueAttributesRequest struct {
	QueueUrl       string   `json:"QueueUrl"`
	AttributeNames []string `json:"AttributeNames,omitempty"`
}

type getQueueAttributesResponse struct {
	Attributes map[string]string `json:"Attributes"`
}

type setQueueAttributesRequest struct {
	QueueUrl   string            `json:"QueueUrl"`
	Attributes map[string]string `json:"Attributes"`
}

type tagQueueRequest struct {
	QueueUrl string            `json:"QueueUrl"`
	Tags     map[string]string `json:"Tags"`
}

type untagQueueRequest struct {
	QueueUrl string   `json:"QueueUrl"`
	TagKeys  []string `json:"TagKeys"`
}

type listQueueTagsRequest struct {
	QueueUrl string `json:"QueueUrl"`
}

type listQueueTagsResponse struct {
	Tags map[string]string `json:"Tags"`
}

type sendMessageRequest struct {
	QueueUrl                string                               `json:"QueueUrl"`
	MessageBody             string                               `json:"MessageBody"`
	DelaySeconds            *int                                 `json:"DelaySeconds,omitempty"`
	MessageAttributes       map[string]wireMessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageGroupId          string                               `json:"MessageGroupId,omitempty"`
	MessageDeduplicationId  string                               `json:"MessageDeduplicationId,omitempty"`
}

type sendMessageResponse struct {
	MessageId              string `json:"MessageId"`
	MD5OfMessageBody        string `json:"MD5OfMessageBody"`
	SequenceNumber          string `json:"SequenceNumber,omitempty"`
}

type sendMessageBatchEntry struct {
	Id                     string                               `json:"Id"`
	MessageBody            string                               `json:"MessageBody"`
	DelaySeconds           *int                                 `json:"DelaySeconds,omitempty"`
	MessageAttributes      map[string]wireMessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageGroupId         string                               `json:"MessageGroupId,omitempty"`
	MessageDeduplicationId string                               `json:"MessageDeduplicationId,omitempty"`
}

type sendMessageBatchRequest struct {
	QueueUrl string                  `json:"QueueUrl"`
	Entries  []sendMessageBatchEntry `json:"Entries"`
}

type batchResultErrorEntry struct {
	Id          string `json:"Id"`
	SenderFault bool   `json:"SenderFault"`
	Code        string `json:"Code"`
	Message     string `json:"Message,omitempty"`
}

type sendMessageBatchResultEntry struct {
	Id             string `json:"Id"`
	MessageId      string `json:"MessageId"`
	MD5OfMessageBody string `json:"MD5OfMessageBody"`
	SequenceNumber string `json:"SequenceNumber,omitempty"`
}

type sendMessageBatchResponse struct {
	Successful []sendMessageBatchResultEntry `json:"Successful"`
	Failed     []batchResultErrorEntry       `json:"Failed"`
}

type receiveMessageRequest struct {
	QueueUrl                string   `json:"QueueUrl"`
	MaxNumberOfMessages     int      `json:"MaxNumberOfMessages,omitempty"`
	VisibilityTimeout       *int     `json:"VisibilityTimeout,omitempty"`
	WaitTimeSeconds         int      `json:"WaitTimeSeconds,omitempty"`
	AttributeNames          []string `json:"AttributeNames,omitempty"`
	MessageAttributeNames   []string `json:"MessageAttributeNames,omitempty"`
	ReceiveRequestAttemptId string   `json:"ReceiveRequestAttemptId,omitempty"`
}

type wireMessage struct {
	MessageId              string                               `json:"MessageId"`
	ReceiptHandle          string                               `json:"ReceiptHandle"`
	MD5OfBody              string                               `json:"MD5OfBody"`
	Body                   string                               `json:"Body"`
	Attributes             map[string]string                    `json:"Attributes,omitempty"`
	MessageAttributes      map[string]wireMessageAttributeValue `json:"MessageAttributes,omitempty"`
}

type receiveMessageResponse struct {
	Messages []wireMessage `json:"Messages,omitempty"`
}

type deleteMessageRequest struct {
	QueueUrl      string `json:"QueueUrl"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

type deleteMessageBatchEntry struct {
	Id            string `json:"Id"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

type deleteMessageBatchRequest struct {
	QueueUrl string                    `json:"QueueUrl"`
	Entries  []deleteMessageBatchEntry `json:"Entries"`
}

type deleteMessageBatchResultEntry struct {
	Id string `json:"Id"`
}

type deleteMessageBatchResponse struct {
	Successful []deleteMessageBatchResultEntry `json:"Successful"`
	Failed     []batchResultErrorEntry         `json:"Failed"`
}

type changeMessageVisibilityRequest struct {
	QueueUrl          string `json:"QueueUrl"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int    `json:"VisibilityTimeout"`
}

type changeMessageVisibilityBatchEntry struct {
	Id                string `json:"Id"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int    `json:"VisibilityTimeout"`
}

type changeMessageVisibilityBatchRequest struct {
	QueueUrl string                              `json:"QueueUrl"`
	Entries  []changeMessageVisibilityBatchEntry `json:"Entries"`
}

type changeMessageVisibilityBatchResponse struct {
	Successful []deleteMessageBatchResultEntry `json:"Successful"`
	Failed     []batchResultErrorEntry         `json:"Failed"`
}

type purgeQueueRequest struct {
	QueueUrl string `json:"QueueUrl"`
}

type deleteQueueRequest struct {
	QueueUrl string `json:"QueueUrl"`
}

type addPermissionRequest struct {
	QueueUrl     string   `json:"QueueUrl"`
	Label        string   `json:"Label"`
	AWSAccountIds []string `json:"AWSAccountIds"`
	Actions      []string `json:"Actions"`
}

type removePermissionRequest struct {
	QueueUrl string `json:"QueueUrl"`
	Label    string `json:"Label"`
}

type startMessageMoveTaskRequest struct {
	SourceArn                   string `json:"SourceArn"`
	DestinationArn              string `json:"DestinationArn,omitempty"`
	MaxNumberOfMessagesPerSecond int    `json:"MaxNumberOfMessagesPerSecond,omitempty"`
}

type startMessageMoveTaskResponse struct {
	TaskHandle string `json:"TaskHandle"`
}

type listMessageMoveTasksRequest struct {
	SourceArn string `json:"SourceArn"`
}

type wireMoveTask struct {
	TaskHandle                   string `json:"TaskHandle"`
	Status                       string `json:"Status"`
	SourceArn                    string `json:"SourceArn"`
	DestinationArn               string `json:"DestinationArn,omitempty"`
	MaxNumberOfMessagesPerSecond int    `json:"MaxNumberOfMessagesPerSecond,omitempty"`
	ApproximateNumberOfMessagesMoved int64 `json:"ApproximateNumberOfMessagesMoved"`
}

type listMessageMoveTasksResponse struct {
	Results []wireMoveTask `json:"Results"`
}

type cancelMessageMoveTaskRequest struct {
	TaskHandle string `json:"TaskHandle"`
}

type cancelMessageMoveTaskResponse struct {
	ApproximateNumberOfMessagesMoved int64 `json:"ApproximateNumberOfMessagesMoved"`
}
