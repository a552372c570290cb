package s3

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

// newSDKClient points a real aws-sdk-go-v2 S3 client, in path-style mode,
// at an in-process httptest server running this package's own dispatch
// handler.
func newSDKClient(t *testing.T) *s3.Client {
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

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
	})
}

func TestSDKClientCreateBucketPutGetObject(t *testing.T) {
	client := newSDKClient(t)
	ctx := context.Background()

	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("demo")})
	require.NoError(t, err)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("demo"),
		Key:    aws.String("hello.txt"),
		Body:   bytes.NewReader([]byte("hello from the sdk")),
	})
	require.NoError(t, err)

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String("demo"),
		Key:    aws.String("hello.txt"),
	})
	require.NoError(t, err)
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	require.Equal(t, "hello from the sdk", string(body))
}
