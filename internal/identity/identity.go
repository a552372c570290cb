// Package identity holds the process-wide constants and generators every
// emulated service builds on: account id, region, ARN formatting, and the
// monotonic clock that visibility timeouts, retention, and dedup windows
// are all compared against.
package identity

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the fixed account/region pair stamped into every ARN and
// every canonical resource URL the emulator returns.
type Identity struct {
	AccountID string
	Region    string
}

// New builds an Identity, defaulting empty fields the way the real SDKs
// default an unconfigured profile.
func New(accountID, region string) Identity {
	if accountID == "" {
		accountID = "000000000000"
	}
	if region == "" {
		region = "us-east-1"
	}
	return Identity{AccountID: accountID, Region: region}
}

// ARN formats arn:aws:<service>:<region>:<account>:<resource> from the
// identity's own Region and AccountID; there is no empty-region form.
func (id Identity) ARN(service, resource string) string {
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s", service, id.Region, id.AccountID, resource)
}

// NewID returns a fresh UUIDv4, used for MessageId, upload ids, task
// handles, and the other opaque identifiers the spec calls for.
func NewID() string {
	return uuid.NewString()
}

// ETag returns the lowercase-hex MD5 of body, quoted, matching S3's wire
// format for both single-put and (via the multipart variant below)
// multipart objects.
func ETag(body []byte) string {
	sum := md5.Sum(body)
	return fmt.Sprintf("%q", hex.EncodeToString(sum[:]))
}

// RawETag returns the unquoted hex digest, used when composing a
// multipart ETag from individual part ETags.
func RawETag(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

// MultipartETag implements the AWS multipart rule:
// md5(concat(md5(part_i)))-N, where each md5(part_i) is the *binary*
// digest of a part, not its hex string.
func MultipartETag(partDigests [][16]byte) string {
	h := md5.New()
	for _, d := range partDigests {
		h.Write(d[:])
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%s-%d", hex.EncodeToString(h.Sum(nil)), len(partDigests)))
}

// SHA256Hex is used by SQS content-based deduplication, which substitutes
// the body's SHA-256 for an explicit MessageDeduplicationId.
func SHA256Hex(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Clock is a single monotonic time source so that every comparison in the
// SQS and S3 engines — visibility expiry, retention, dedup windows, purge
// cooldowns — reads from the same clock. Tests substitute Now to control
// elapsed time deterministically.
type Clock struct {
	Now func() time.Time
}

// NewClock returns a Clock backed by the real wall clock.
func NewClock() *Clock {
	return &Clock{Now: time.Now}
}

// QueueURL renders the canonical SQS queue URL CreateQueue returns:
// http://<host>/<account>/<name>.
func QueueURL(host, accountID, name string) string {
	return fmt.Sprintf("http://%s/%s/%s", host, accountID, name)
}

// IsFifoName reports whether a queue/topic name carries the .fifo suffix.
func IsFifoName(name string) bool {
	return strings.HasSuffix(name, ".fifo")
}
