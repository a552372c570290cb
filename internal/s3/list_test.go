package s3

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListObjectsV2PrefixDelimiterAndPagination(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)

	for _, k := range []string{"a/1", "a/2", "a/b/3", "c", "d"} {
		_, err := reg.PutObject("b", k, PutInput{Body: []byte(k)})
		require.NoError(t, err)
	}

	result, err := reg.ListObjectsV2("b", ListInput{Prefix: "a/", Delimiter: "/"})
	require.NoError(t, err)
	var keys []string
	for _, o := range result.Contents {
		keys = append(keys, o.Key)
	}
	assert.ElementsMatch(t, []string{"a/1", "a/2"}, keys)
	assert.ElementsMatch(t, []string{"a/b/"}, result.CommonPrefixes)
	assert.False(t, result.IsTruncated)

	page1, err := reg.ListObjectsV2("b", ListInput{MaxKeys: 2})
	require.NoError(t, err)
	assert.True(t, page1.IsTruncated)
	assert.Len(t, page1.Contents, 2)
	assert.NotEmpty(t, page1.NextContinuationToken)

	page2, err := reg.ListObjectsV2("b", ListInput{MaxKeys: 2, ContinuationToken: page1.NextContinuationToken})
	require.NoError(t, err)
	assert.NotEmpty(t, page2.Contents)

	seen := map[string]bool{}
	for _, o := range page1.Contents {
		seen[o.Key] = true
	}
	for _, o := range page2.Contents {
		assert.False(t, seen[o.Key], "page2 must not repeat a page1 key")
	}
}

func TestListMultipartUploadsSortedByKeyThenUploadID(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)

	_, err = reg.CreateMultipartUpload("b", "z", "", nil)
	require.NoError(t, err)
	_, err = reg.CreateMultipartUpload("b", "a", "", nil)
	require.NoError(t, err)

	uploads, err := reg.ListMultipartUploads("b")
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "a", uploads[0].Key)
	assert.Equal(t, "z", uploads[1].Key)
}
