package lambda

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

// newSDKClient points a real aws-sdk-go-v2 Lambda client at an in-process
// httptest server running this package's own dispatch handler.
func newSDKClient(t *testing.T) *lambda.Client {
	t.Helper()
	reg := NewRegistry(identity.New("", ""))
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	return lambda.NewFromConfig(cfg, func(o *lambda.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
	})
}

func TestSDKClientCreateFunctionInvoke(t *testing.T) {
	client := newSDKClient(t)
	ctx := context.Background()

	created, err := client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String("greeter"),
		Runtime:      "nodejs20.x",
		Handler:      aws.String("index.handler"),
		Role:         aws.String("arn:aws:iam::000000000000:role/lambda-role"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, *created.FunctionArn)

	got, err := client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String("greeter")})
	require.NoError(t, err)
	require.Equal(t, "greeter", *got.Configuration.FunctionName)

	invoked, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String("greeter"),
		Payload:      []byte(`{}`),
	})
	require.NoError(t, err)
	require.Equal(t, int32(200), invoked.StatusCode)
}
