package s3

import (
	"sort"
	"strings"
)

const defaultMaxKeys = 1000

// ListInput carries one ListObjectsV2's decoded query parameters.
type ListInput struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int
	StartAfter        string
	ContinuationToken string
}

// ListResult is the union ListObjectsV2 produces per spec.md §4.3's
// algorithm: Contents and CommonPrefixes partition the prefix-filtered key
// set by the first delimiter occurrence after the prefix.
type ListResult struct {
	Contents              []*Object
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// ListObjectsV2 implements spec.md §4.3's listing algorithm: filter by
// prefix, partition by delimiter, sort byte-wise, paginate.
func (r *Registry) ListObjectsV2(bucketName string, in ListInput) (ListResult, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return ListResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	maxKeys := in.MaxKeys
	if maxKeys <= 0 || maxKeys > defaultMaxKeys {
		maxKeys = defaultMaxKeys
	}

	type entry struct {
		key          string
		commonPrefix string // non-empty iff this entry folds into a CommonPrefixes bucket
	}
	seenPrefixes := map[string]bool{}
	var entries []entry

	for key, obj := range b.objects {
		_ = obj
		if !strings.HasPrefix(key, in.Prefix) {
			continue
		}
		if in.Delimiter != "" {
			rest := key[len(in.Prefix):]
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				cp := key[:len(in.Prefix)+idx+len(in.Delimiter)]
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					entries = append(entries, entry{commonPrefix: cp})
				}
				continue
			}
		}
		entries = append(entries, entry{key: key})
	}

	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	start := 0
	marker := in.ContinuationToken
	if marker == "" {
		marker = in.StartAfter
	}
	if marker != "" {
		for i, e := range entries {
			if sortKey(e) > marker {
				start = i
				break
			}
			start = i + 1
		}
	}
	entries = entries[start:]

	truncated := len(entries) > maxKeys
	if truncated {
		entries = entries[:maxKeys]
	}

	result := ListResult{IsTruncated: truncated}
	for _, e := range entries {
		if e.commonPrefix != "" {
			result.CommonPrefixes = append(result.CommonPrefixes, e.commonPrefix)
		} else {
			result.Contents = append(result.Contents, b.objects[e.key])
		}
	}
	if truncated && len(entries) > 0 {
		result.NextContinuationToken = sortKey(entries[len(entries)-1])
	}
	return result, nil
}

func sortKey(e struct {
	key          string
	commonPrefix string
}) string {
	if e.commonPrefix != "" {
		return e.commonPrefix
	}
	return e.key
}

// ListMultipartUploads returns all active uploads for a bucket, sorted by
// key then upload id.
func (r *Registry) ListMultipartUploads(bucketName string) ([]*MultipartUpload, error) {
	b, err := r.Get(bucketName)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*MultipartUpload, 0, len(b.uploads))
	for _, u := range b.uploads {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].UploadID < out[j].UploadID
	})
	return out, nil
}
