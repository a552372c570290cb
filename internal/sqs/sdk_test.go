package sqs

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

// newSDKClient points a real aws-sdk-go-v2 SQS client at an in-process
// httptest server running this package's own dispatch handler.
func newSDKClient(t *testing.T) *sqs.Client {
	t.Helper()
	clock := identity.NewClock()
	reg := NewRegistry(identity.New("", ""), clock, "sqs.local")
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
	})
}

func TestSDKClientSendReceiveDeleteMessage(t *testing.T) {
	client := newSDKClient(t)
	ctx := context.Background()

	created, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String("orders")})
	require.NoError(t, err)
	require.NotEmpty(t, *created.QueueUrl)

	_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    created.QueueUrl,
		MessageBody: aws.String("hello from the sdk"),
	})
	require.NoError(t, err)

	received, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            created.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	require.NoError(t, err)
	require.Len(t, received.Messages, 1)
	require.Equal(t, "hello from the sdk", *received.Messages[0].Body)

	_, err = client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      created.QueueUrl,
		ReceiptHandle: received.Messages[0].ReceiptHandle,
	})
	require.NoError(t, err)
}
