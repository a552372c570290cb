package s3

import (
	"bytes"
	"testing"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartUploadAssemblyAndETagRule(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)

	u, err := reg.CreateMultipartUpload("b", "big", "application/octet-stream", nil)
	require.NoError(t, err)

	part1 := bytes.Repeat([]byte("A"), 5*1024*1024)
	part2 := []byte("B")

	p1, err := reg.UploadPart("b", u.UploadID, 1, part1)
	require.NoError(t, err)
	p2, err := reg.UploadPart("b", u.UploadID, 2, part2)
	require.NoError(t, err)

	obj, err := reg.CompleteMultipartUpload("b", u.UploadID, []CompletedPart{
		{PartNumber: 1, ETag: p1.ETag},
		{PartNumber: 2, ETag: p2.ETag},
	})
	require.NoError(t, err)

	assert.Equal(t, append(append([]byte{}, part1...), part2...), obj.Body)

	digests := [][16]byte{md5Digest(part1), md5Digest(part2)}
	assert.Equal(t, identity.MultipartETag(digests), obj.ETag)

	_, err = reg.CompleteMultipartUpload("b", u.UploadID, []CompletedPart{{PartNumber: 1, ETag: p1.ETag}})
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}

func TestCompleteMultipartRequiresStrictlyIncreasingPartsAndMatchingETags(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)
	u, err := reg.CreateMultipartUpload("b", "k", "", nil)
	require.NoError(t, err)

	p1, err := reg.UploadPart("b", u.UploadID, 1, []byte("a"))
	require.NoError(t, err)
	p2, err := reg.UploadPart("b", u.UploadID, 2, []byte("b"))
	require.NoError(t, err)

	_, err = reg.CompleteMultipartUpload("b", u.UploadID, []CompletedPart{
		{PartNumber: 2, ETag: p2.ETag},
		{PartNumber: 1, ETag: p1.ETag},
	})
	require.Error(t, err)

	_, err = reg.CompleteMultipartUpload("b", u.UploadID, []CompletedPart{
		{PartNumber: 1, ETag: `"wrong"`},
	})
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.InvalidArgument, kind)
}

func TestUploadPartRejectsOutOfRangePartNumber(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)
	u, err := reg.CreateMultipartUpload("b", "k", "", nil)
	require.NoError(t, err)

	_, err = reg.UploadPart("b", u.UploadID, 0, []byte("x"))
	require.Error(t, err)
	_, err = reg.UploadPart("b", u.UploadID, 10001, []byte("x"))
	require.Error(t, err)
}

func TestAbortMultipartUploadDiscardsIt(t *testing.T) {
	reg := newTestRegistry(time.Now())
	_, err := reg.CreateBucket("b")
	require.NoError(t, err)
	u, err := reg.CreateMultipartUpload("b", "k", "", nil)
	require.NoError(t, err)

	require.NoError(t, reg.AbortMultipartUpload("b", u.UploadID))

	_, err = reg.CompleteMultipartUpload("b", u.UploadID, []CompletedPart{{PartNumber: 1, ETag: "x"}})
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}
