package s3

import (
	"testing"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(now time.Time) *Registry {
	clock := &identity.Clock{Now: func() time.Time { return now }}
	return NewRegistry(identity.New("", ""), clock)
}

func TestPutGetObjectRoundTripETag(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)

	put, err := reg.PutObject("b", "k", PutInput{Body: []byte("Hello")})
	require.NoError(t, err)
	assert.Equal(t, `"8b1a9953c4611296a827abf8c47804d7"`, put.ETag)

	got, err := reg.GetObject("b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), got.Body)
	assert.Equal(t, put.ETag, got.ETag)
}

func TestGetObjectMissingIsNotFound(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)

	_, err = reg.GetObject("b", "missing")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}

func TestParseRangeVariants(t *testing.T) {
	const size = 10

	rng, err := ParseRange("bytes=2-5", size)
	require.NoError(t, err)
	assert.Equal(t, &ByteRange{Start: 2, End: 5}, rng)

	rng, err = ParseRange("bytes=-4", size)
	require.NoError(t, err)
	assert.Equal(t, &ByteRange{Start: 6, End: 9}, rng)

	rng, err = ParseRange("bytes=7-", size)
	require.NoError(t, err)
	assert.Equal(t, &ByteRange{Start: 7, End: 9}, rng)

	rng, err = ParseRange("bytes=2-100", size)
	require.NoError(t, err)
	assert.Equal(t, &ByteRange{Start: 2, End: 9}, rng)

	rng, err = ParseRange("", size)
	require.NoError(t, err)
	assert.Nil(t, rng)

	_, err = ParseRange("nonsense", size)
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.InvalidArgument, kind)
}

func TestCopyObjectDefaultsAndReplacesMetadata(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("src")
	require.NoError(t, err)
	_, err = reg.CreateBucket("dst")
	require.NoError(t, err)

	_, err = reg.PutObject("src", "k", PutInput{
		Body:        []byte("payload"),
		ContentType: "text/plain",
		Metadata:    map[string]string{"a": "1"},
	})
	require.NoError(t, err)

	copied, err := reg.CopyObject("dst", "k2", CopyInput{SourceBucket: "src", SourceKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", copied.ContentType)
	assert.Equal(t, "1", copied.Metadata["a"])

	replaced, err := reg.CopyObject("dst", "k3", CopyInput{
		SourceBucket:      "src",
		SourceKey:         "k",
		MetadataDirective: "REPLACE",
		ContentType:       "application/json",
		Metadata:          map[string]string{"b": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", replaced.ContentType)
	assert.Equal(t, "2", replaced.Metadata["b"])
	assert.Empty(t, replaced.Metadata["a"])
}

func TestDeleteObjectsSucceedsSilentlyOnMissingKeys(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)
	_, err = reg.PutObject("b", "k1", PutInput{Body: []byte("x")})
	require.NoError(t, err)

	deleted, err := reg.DeleteObjects("b", []string{"k1", "nope"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k1", "nope"}, deleted)

	_, err = reg.GetObject("b", "k1")
	require.Error(t, err)
}

func TestDeleteBucketRefusesWhenNotEmpty(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)
	_, err = reg.PutObject("b", "k", PutInput{Body: []byte("x")})
	require.NoError(t, err)

	err = reg.DeleteBucket("b")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.Conflict, kind)

	_, err = reg.DeleteObjects("b", []string{"k"})
	require.NoError(t, err)
	require.NoError(t, reg.DeleteBucket("b"))
}
