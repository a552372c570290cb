package s3

import (
	"crypto/md5"
	"sort"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

func md5Digest(body []byte) [16]byte {
	return md5.Sum(body)
}

const maxPartNumber = 10000

// CreateMultipartUpload allocates an upload id and stores the object-level
// metadata the eventual CompleteMultipartUpload will carry over.
func (r *Registry) CreateMultipartUpload(bucketName, key, contentType string, metadata map[string]string) (*MultipartUpload, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	u := &MultipartUpload{
		UploadID:    identity.NewID(),
		Bucket:      bucketName,
		Key:         key,
		ContentType: contentType,
		Metadata:    metadata,
		CreatedAt:   r.now(),
		Parts:       map[int]*Part{},
	}
	b.uploads[u.UploadID] = u
	return u, nil
}

// UploadPart stores (or overwrites) one numbered part's body.
func (r *Registry) UploadPart(bucketName, uploadID string, partNumber int, body []byte) (*Part, error) {
	if partNumber < 1 || partNumber > maxPartNumber {
		return nil, apperr.New(apperr.InvalidArgument, "partNumber must be between 1 and 10000")
	}
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.uploads[uploadID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified upload does not exist")
	}
	part := &Part{
		Number: partNumber,
		ETag:   identity.ETag(body),
		Size:   int64(len(body)),
		Body:   body,
	}
	u.Parts[partNumber] = part
	return part, nil
}

// ListParts returns an upload's parts ordered by partNumber.
func (r *Registry) ListParts(bucketName, uploadID string) ([]*Part, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.uploads[uploadID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified upload does not exist")
	}
	numbers := make([]int, 0, len(u.Parts))
	for n := range u.Parts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	out := make([]*Part, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, u.Parts[n])
	}
	return out, nil
}

// CompletedPart is one entry of a CompleteMultipartUpload request: a
// client-supplied part number plus the ETag it expects to match.
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// CompleteMultipartUpload validates the client-supplied ordered part list,
// splices the part bodies, computes the AWS multipart ETag rule, stores
// the resulting object, and discards the upload (spec.md §4.3).
func (r *Registry) CompleteMultipartUpload(bucketName, uploadID string, completed []CompletedPart) (*Object, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.uploads[uploadID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified upload does not exist")
	}

	if len(completed) == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "CompleteMultipartUpload requires at least one part")
	}

	var body []byte
	digests := make([][16]byte, 0, len(completed))
	prev := -1
	for _, cp := range completed {
		if cp.PartNumber <= prev {
			return nil, apperr.New(apperr.InvalidArgument, "part numbers must be strictly increasing")
		}
		prev = cp.PartNumber

		part, ok := u.Parts[cp.PartNumber]
		if !ok {
			return nil, apperr.New(apperr.InvalidArgument, "referenced part was never uploaded")
		}
		if unquote(part.ETag) != unquote(cp.ETag) {
			return nil, apperr.New(apperr.InvalidArgument, "part ETag does not match the stored part")
		}
		body = append(body, part.Body...)
		digests = append(digests, md5Digest(part.Body))
	}

	obj := &Object{
		Key:          u.Key,
		Body:         body,
		ContentType:  u.ContentType,
		Metadata:     u.Metadata,
		ETag:         identity.MultipartETag(digests),
		LastModified: r.now(),
	}
	b.objects[u.Key] = obj
	delete(b.uploads, uploadID)
	return obj, nil
}

// AbortMultipartUpload discards an in-progress upload.
func (r *Registry) AbortMultipartUpload(bucketName, uploadID string) error {
	b, err := r.Get(bucketName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uploads, uploadID)
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
