package sns

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

// newSDKClient points a real aws-sdk-go-v2 SNS client at an in-process
// httptest server running this package's own dispatch handler.
func newSDKClient(t *testing.T) *sns.Client {
	t.Helper()
	reg := NewRegistry(identity.New("", ""), identity.NewClock())
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	return sns.NewFromConfig(cfg, func(o *sns.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
	})
}

func TestSDKClientCreateTopicPublish(t *testing.T) {
	client := newSDKClient(t)
	ctx := context.Background()

	created, err := client.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String("orders")})
	require.NoError(t, err)
	require.NotEmpty(t, *created.TopicArn)

	published, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: created.TopicArn,
		Message:  aws.String("hello from the sdk"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, *published.MessageId)
}
