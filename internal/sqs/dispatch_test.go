package sqs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Registry) {
	t.Helper()
	clock := identity.NewClock()
	reg := NewRegistry(identity.New("", ""), clock, "sqs.local")
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, reg
}

func postAction(t *testing.T, srv *httptest.Server, action string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/", bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("X-Amz-Target", "AmazonSQS."+action)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestDispatchCreateSendReceiveDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	var created createQueueResponse
	resp := postAction(t, srv, "CreateQueue", createQueueRequest{QueueName: "demo"}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, created.QueueUrl, "demo")

	var sent sendMessageResponse
	resp = postAction(t, srv, "SendMessage", sendMessageRequest{QueueUrl: created.QueueUrl, MessageBody: "hi"}, &sent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, sent.MessageId)

	var received receiveMessageResponse
	resp = postAction(t, srv, "ReceiveMessage", receiveMessageRequest{QueueUrl: created.QueueUrl, MaxNumberOfMessages: 5}, &received)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, received.Messages, 1)
	require.Equal(t, "hi", received.Messages[0].Body)

	resp = postAction(t, srv, "DeleteMessage", deleteMessageRequest{
		QueueUrl:      created.QueueUrl,
		ReceiptHandle: received.Messages[0].ReceiptHandle,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDispatchUnknownActionIsUnsupportedOperation(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postAction(t, srv, "NotARealAction", struct{}{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchNonExistentQueueReturnsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postAction(t, srv, "GetQueueAttributes", getQueueAttributesRequest{QueueUrl: "http://sqs.local/000000000000/missing"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchLongPollOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	var created createQueueResponse
	postAction(t, srv, "CreateQueue", createQueueRequest{QueueName: "poll"}, &created)

	done := make(chan receiveMessageResponse, 1)
	go func() {
		var received receiveMessageResponse
		postAction(t, srv, "ReceiveMessage", receiveMessageRequest{
			QueueUrl:            created.QueueUrl,
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     5,
		}, &received)
		done <- received
	}()

	time.Sleep(100 * time.Millisecond)
	postAction(t, srv, "SendMessage", sendMessageRequest{QueueUrl: created.QueueUrl, MessageBody: "async"}, nil)

	select {
	case received := <-done:
		require.Len(t, received.Messages, 1)
		require.Equal(t, "async", received.Messages[0].Body)
	case <-time.After(3 * time.Second):
		t.Fatal("long poll over HTTP did not return the sent message")
	}
}
