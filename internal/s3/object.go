package s3

import (
	"strconv"
	"strings"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

const maxObjectSize = 5 * 1024 * 1024 * 1024 // 5 GiB, spec.md §5

// PutInput carries one PutObject's decoded fields.
type PutInput struct {
	Body        []byte
	ContentType string
	Metadata    map[string]string
	Tags        map[string]string
}

// PutObject implements spec.md §4.3 PutObject: ETag = md5(body), replacing
// any prior value under the same key.
func (r *Registry) PutObject(bucketName, key string, in PutInput) (*Object, error) {
	if len(in.Body) > maxObjectSize {
		return nil, apperr.New(apperr.InvalidArgument, "object body exceeds the 5 GiB request limit")
	}
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	obj := &Object{
		Key:          key,
		Body:         in.Body,
		ContentType:  in.ContentType,
		Metadata:     in.Metadata,
		Tags:         in.Tags,
		ETag:         identity.ETag(in.Body),
		LastModified: r.now(),
	}
	b.objects[key] = obj
	return obj, nil
}

// GetObject returns the full stored object, NotFound if the key is
// absent.
func (r *Registry) GetObject(bucketName, key string) (*Object, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified key does not exist")
	}
	return obj, nil
}

// ByteRange is a parsed Range header.
type ByteRange struct {
	Start, End int64 // inclusive, both resolved against the object's size
}

// ParseRange parses "bytes=a-b", "bytes=-N" (last N), and "bytes=a-"
// against size. Malformed ranges return InvalidArgument (spec.md §4.3).
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, apperr.New(apperr.InvalidArgument, "malformed Range header")
	}
	spec := strings.TrimPrefix(header, prefix)
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, apperr.New(apperr.InvalidArgument, "malformed Range header")
	}

	if parts[0] == "" {
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return nil, apperr.New(apperr.InvalidArgument, "malformed Range header")
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		return &ByteRange{Start: start, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return nil, apperr.New(apperr.InvalidArgument, "malformed Range header")
	}
	if parts[1] == "" {
		if start >= size {
			return nil, apperr.New(apperr.InvalidArgument, "range start beyond object size")
		}
		return &ByteRange{Start: start, End: size - 1}, nil
	}
	end, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || end < start {
		return nil, apperr.New(apperr.InvalidArgument, "malformed Range header")
	}
	if end >= size {
		end = size - 1
	}
	return &ByteRange{Start: start, End: end}, nil
}

// CopyInput carries one CopyObject's decoded fields.
type CopyInput struct {
	SourceBucket, SourceKey string
	MetadataDirective       string // "COPY" (default) or "REPLACE"
	ContentType             string
	Metadata                map[string]string
}

// CopyObject implements spec.md §4.3 CopyObject.
func (r *Registry) CopyObject(destBucketName, destKey string, in CopyInput) (*Object, error) {
	srcBucket, err := r.Get(in.SourceBucket)
	if err != nil {
		return nil, err
	}
	destBucket, err := r.Get(destBucketName)
	if err != nil {
		return nil, err
	}

	unlock := lockBuckets(srcBucket, destBucket)
	defer unlock()

	src, ok := srcBucket.objects[in.SourceKey]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified source key does not exist")
	}

	contentType := src.ContentType
	metadata := src.Metadata
	if in.MetadataDirective == "REPLACE" {
		contentType = in.ContentType
		metadata = in.Metadata
	}

	body := append([]byte(nil), src.Body...)
	obj := &Object{
		Key:          destKey,
		Body:         body,
		ContentType:  contentType,
		Metadata:     metadata,
		Tags:         src.Tags,
		ETag:         identity.ETag(body),
		LastModified: r.now(),
	}
	destBucket.objects[destKey] = obj
	return obj, nil
}

// DeleteObject removes a single key; missing keys succeed silently
// (spec.md §4.3 DeleteObjects "missing keys succeed silently" extends
// naturally to the single-key delete).
func (r *Registry) DeleteObject(bucketName, key string) error {
	b, err := r.Get(bucketName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// DeleteObjects implements the batch DeleteObjects API: returns the keys
// deleted; missing keys succeed silently so every requested key is
// reported deleted.
func (r *Registry) DeleteObjects(bucketName string, keys []string) ([]string, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := make([]string, 0, len(keys))
	for _, k := range keys {
		delete(b.objects, k)
		deleted = append(deleted, k)
	}
	return deleted, nil
}

// TagObject replaces an object's tag set.
func (r *Registry) TagObject(bucketName, key string, tags map[string]string) error {
	b, err := r.Get(bucketName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return apperr.New(apperr.NotFound, "The specified key does not exist")
	}
	obj.Tags = tags
	return nil
}

// DeleteObjectTagging clears an object's tag set.
func (r *Registry) DeleteObjectTagging(bucketName, key string) error {
	return r.TagObject(bucketName, key, map[string]string{})
}

// GetObjectTagging returns a copy of an object's tag set.
func (r *Registry) GetObjectTagging(bucketName, key string) (map[string]string, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "The specified key does not exist")
	}
	out := map[string]string{}
	for k, v := range obj.Tags {
		out[k] = v
	}
	return out, nil
}
