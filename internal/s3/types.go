// Package s3 implements L3 of the emulator for S3: bucket/object storage,
// multipart upload assembly, listing with prefix/delimiter semantics, and
// range reads (spec.md §3.3, §4.3).
package s3

import (
	"sync"
	"time"

	"github.com/nimbusemu/nimbus/internal/apperr"
)

// VersioningStatus mirrors S3's bucket versioning states. History is not
// retained regardless of status (spec.md §4.3 "documented limitation").
type VersioningStatus string

const (
	VersioningUnset     VersioningStatus = ""
	VersioningEnabled   VersioningStatus = "Enabled"
	VersioningSuspended VersioningStatus = "Suspended"
)

// Object is the latest (and only retained) version of a key.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	Metadata     map[string]string
	Tags         map[string]string
	ETag         string
	LastModified time.Time
}

// Part is one uploaded part of an in-progress multipart upload.
type Part struct {
	Number int
	ETag   string
	Size   int64
	Body   []byte
}

// MultipartUpload tracks one in-progress multipart upload. Part bodies
// stay independent byte sequences until CompleteMultipartUpload splices
// them, so AbortMultipartUpload is free (spec.md design notes).
type MultipartUpload struct {
	UploadID    string
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
	CreatedAt   time.Time
	Parts       map[int]*Part
}

// Bucket owns its own objects and multipart uploads, each independently
// lockable through the bucket's own mutex (spec.md §4.3 "each bucket is
// independently locked for mutation").
type Bucket struct {
	mu sync.Mutex

	Name       string
	CreatedAt  time.Time
	Versioning VersioningStatus
	Tags       map[string]string

	objects map[string]*Object
	uploads map[string]*MultipartUpload
}

func newBucket(name string, now time.Time) *Bucket {
	return &Bucket{
		Name:      name,
		CreatedAt: now,
		Tags:      map[string]string{},
		objects:   map[string]*Object{},
		uploads:   map[string]*MultipartUpload{},
	}
}

var errBucketNotEmpty = apperr.New(apperr.Conflict, "BucketNotEmpty")
