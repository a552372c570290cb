package s3

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// Handler dispatches S3's REST/XML surface (spec.md §6.1): operation is
// identified by (method, path segments, query-string flags), not by a
// fixed action header.
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers S3's path-style routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.listBuckets)

	r.Put("/{bucket}", h.bucketPut)
	r.Delete("/{bucket}", h.bucketDelete)
	r.Head("/{bucket}", h.bucketHead)
	r.Get("/{bucket}", h.bucketGet)
	r.Post("/{bucket}", h.bucketPost)

	r.Put("/{bucket}/*", h.objectPut)
	r.Get("/{bucket}/*", h.objectGet)
	r.Head("/{bucket}/*", h.objectHead)
	r.Delete("/{bucket}/*", h.objectDelete)
	r.Post("/{bucket}/*", h.objectPost)
}

func key(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func bucketName(r *http.Request) string {
	return chi.URLParam(r, "bucket")
}

func writeErr(w http.ResponseWriter, table dispatch.ErrorTable, resource string, err error) {
	dispatch.WriteRestXMLError(w, table, resource, err)
}

func logFail(action, bucket, key string, err error) {
	kind, _, _ := ErrorTable.Lookup(err)
	log.Debug().Str("service", "s3").Str("action", action).Str("bucket", bucket).Str("key", key).Str("kind", string(kind)).Msg("request failed")
}

func (h *Handler) listBuckets(w http.ResponseWriter, r *http.Request) {
	buckets := h.reg.ListBuckets()
	result := listAllMyBucketsResult{}
	for _, b := range buckets {
		result.Buckets = append(result.Buckets, bucketXML{Name: b.Name, CreationDate: b.CreatedAt.UTC().Format(timeLayout)})
	}
	dispatch.WriteXML(w, http.StatusOK, result)
}

func (h *Handler) bucketPut(w http.ResponseWriter, r *http.Request) {
	name := bucketName(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "versioning"):
		var cfg versioningConfiguration
		if err := xml.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeErr(w, bucketErrorTable, name, apperr.New(apperr.InvalidArgument, "malformed VersioningConfiguration"))
			return
		}
		if err := h.reg.SetVersioning(name, VersioningStatus(cfg.Status)); err != nil {
			logFail("PutBucketVersioning", name, "", err)
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	case hasQueryFlag(q, "tagging"):
		var t tagging
		if err := xml.NewDecoder(r.Body).Decode(&t); err != nil {
			writeErr(w, bucketErrorTable, name, apperr.New(apperr.InvalidArgument, "malformed Tagging"))
			return
		}
		if err := h.reg.TagBucket(name, tagsFromXML(t)); err != nil {
			logFail("PutBucketTagging", name, "", err)
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		if _, err := h.reg.CreateBucket(name); err != nil {
			logFail("CreateBucket", name, "", err)
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) bucketDelete(w http.ResponseWriter, r *http.Request) {
	name := bucketName(r)
	if hasQueryFlag(r.URL.Query(), "tagging") {
		if err := h.reg.DeleteBucketTagging(name); err != nil {
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.reg.DeleteBucket(name); err != nil {
		logFail("DeleteBucket", name, "", err)
		writeErr(w, bucketErrorTable, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) bucketHead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.reg.Get(bucketName(r)); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) bucketGet(w http.ResponseWriter, r *http.Request) {
	name := bucketName(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "location"):
		dispatch.WriteXML(w, http.StatusOK, locationConstraint{Location: h.reg.Region()})
	case hasQueryFlag(q, "versioning"):
		b, err := h.reg.Get(name)
		if err != nil {
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, versioningConfiguration{Status: string(b.Versioning)})
	case hasQueryFlag(q, "tagging"):
		b, err := h.reg.Get(name)
		if err != nil {
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, tagsToXML(b.Tags))
	case hasQueryFlag(q, "uploads"):
		uploads, err := h.reg.ListMultipartUploads(name)
		if err != nil {
			writeErr(w, bucketErrorTable, name, err)
			return
		}
		result := listMultipartUploadsResult{Bucket: name}
		for _, u := range uploads {
			result.Upload = append(result.Upload, uploadXML{Key: u.Key, UploadID: u.UploadID, Initiated: u.CreatedAt.UTC().Format(timeLayout)})
		}
		dispatch.WriteXML(w, http.StatusOK, result)
	case q.Get("list-type") == "2":
		h.listObjectsV2(w, r, name, q)
	default:
		h.listObjectsV2(w, r, name, q)
	}
}

func (h *Handler) listObjectsV2(w http.ResponseWriter, r *http.Request, name string, q map[string][]string) {
	values := r.URL.Query()
	maxKeys, _ := strconv.Atoi(values.Get("max-keys"))
	result, err := h.reg.ListObjectsV2(name, ListInput{
		Prefix:            values.Get("prefix"),
		Delimiter:         values.Get("delimiter"),
		MaxKeys:           maxKeys,
		StartAfter:        values.Get("start-after"),
		ContinuationToken: values.Get("continuation-token"),
	})
	if err != nil {
		writeErr(w, bucketErrorTable, name, err)
		return
	}
	resp := listBucketResult{
		Name:                  name,
		Prefix:                values.Get("prefix"),
		Delimiter:             values.Get("delimiter"),
		MaxKeys:               defaultMaxKeys,
		KeyCount:              len(result.Contents) + len(result.CommonPrefixes),
		IsTruncated:           result.IsTruncated,
		NextContinuationToken: result.NextContinuationToken,
	}
	for _, obj := range result.Contents {
		resp.Contents = append(resp.Contents, contentXML{
			Key:          obj.Key,
			LastModified: obj.LastModified.UTC().Format(timeLayout),
			ETag:         obj.ETag,
			Size:         int64(len(obj.Body)),
		})
	}
	for _, p := range result.CommonPrefixes {
		resp.CommonPrefixes = append(resp.CommonPrefixes, commonPrefixXML{Prefix: p})
	}
	dispatch.WriteXML(w, http.StatusOK, resp)
}

func (h *Handler) bucketPost(w http.ResponseWriter, r *http.Request) {
	name := bucketName(r)
	if !hasQueryFlag(r.URL.Query(), "delete") {
		writeErr(w, bucketErrorTable, name, apperr.New(apperr.UnsupportedOperation, "unsupported bucket POST operation"))
		return
	}
	var req deleteObjectsRequest
	if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, bucketErrorTable, name, apperr.New(apperr.InvalidArgument, "malformed Delete request"))
		return
	}
	keys := make([]string, 0, len(req.Objects))
	for _, o := range req.Objects {
		keys = append(keys, o.Key)
	}
	deleted, err := h.reg.DeleteObjects(name, keys)
	if err != nil {
		writeErr(w, bucketErrorTable, name, err)
		return
	}
	result := deleteObjectsResult{}
	for _, k := range deleted {
		result.Deleted = append(result.Deleted, deletedXML{Key: k})
	}
	dispatch.WriteXML(w, http.StatusOK, result)
}

func (h *Handler) objectPut(w http.ResponseWriter, r *http.Request) {
	bucket, k := bucketName(r), key(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "tagging"):
		var t tagging
		if err := xml.NewDecoder(r.Body).Decode(&t); err != nil {
			writeErr(w, ErrorTable, k, apperr.New(apperr.InvalidArgument, "malformed Tagging"))
			return
		}
		if err := h.reg.TagObject(bucket, k, tagsFromXML(t)); err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	case q.Get("partNumber") != "" && q.Get("uploadId") != "":
		n, _ := strconv.Atoi(q.Get("partNumber"))
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeErr(w, ErrorTable, k, apperr.New(apperr.InvalidArgument, "failed to read part body"))
			return
		}
		part, err := h.reg.UploadPart(bucket, q.Get("uploadId"), n, body)
		if err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.Header().Set("ETag", part.ETag)
		w.WriteHeader(http.StatusOK)
	case r.Header.Get("x-amz-copy-source") != "":
		srcBucket, srcKey := splitCopySource(r.Header.Get("x-amz-copy-source"))
		obj, err := h.reg.CopyObject(bucket, k, CopyInput{
			SourceBucket:      srcBucket,
			SourceKey:         srcKey,
			MetadataDirective: r.Header.Get("x-amz-metadata-directive"),
			ContentType:       r.Header.Get("Content-Type"),
			Metadata:          metadataFromHeaders(r.Header),
		})
		if err != nil {
			logFail("CopyObject", bucket, k, err)
			writeErr(w, ErrorTable, k, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, copyObjectResult{ETag: obj.ETag, LastModified: obj.LastModified.UTC().Format(timeLayout)})
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeErr(w, ErrorTable, k, apperr.New(apperr.InvalidArgument, "failed to read body"))
			return
		}
		obj, err := h.reg.PutObject(bucket, k, PutInput{
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
			Metadata:    metadataFromHeaders(r.Header),
		})
		if err != nil {
			logFail("PutObject", bucket, k, err)
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.Header().Set("ETag", obj.ETag)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) objectGet(w http.ResponseWriter, r *http.Request) {
	bucket, k := bucketName(r), key(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "tagging"):
		tags, err := h.reg.GetObjectTagging(bucket, k)
		if err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, tagsToXML(tags))
	case q.Get("uploadId") != "":
		parts, err := h.reg.ListParts(bucket, q.Get("uploadId"))
		if err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		result := listPartsResult{Bucket: bucket, Key: k, UploadID: q.Get("uploadId")}
		for _, p := range parts {
			result.Part = append(result.Part, partXML{PartNumber: p.Number, ETag: p.ETag, Size: p.Size})
		}
		dispatch.WriteXML(w, http.StatusOK, result)
	default:
		h.getOrHeadObject(w, r, bucket, k, true)
	}
}

func (h *Handler) objectHead(w http.ResponseWriter, r *http.Request) {
	h.getOrHeadObject(w, r, bucketName(r), key(r), false)
}

func (h *Handler) getOrHeadObject(w http.ResponseWriter, r *http.Request, bucket, k string, withBody bool) {
	obj, err := h.reg.GetObject(bucket, k)
	if err != nil {
		if withBody {
			writeErr(w, ErrorTable, k, err)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
		return
	}

	size := int64(len(obj.Body))
	rng, err := ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		writeErr(w, ErrorTable, k, err)
		return
	}

	for mk, mv := range obj.Metadata {
		w.Header().Set("x-amz-meta-"+mk, mv)
	}
	w.Header().Set("ETag", obj.ETag)
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))

	if rng != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
		w.Header().Set("Content-Length", strconv.FormatInt(rng.End-rng.Start+1, 10))
		w.WriteHeader(http.StatusPartialContent)
		if withBody {
			_, _ = w.Write(obj.Body[rng.Start : rng.End+1])
		}
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if withBody {
		_, _ = w.Write(obj.Body)
	}
}

func (h *Handler) objectDelete(w http.ResponseWriter, r *http.Request) {
	bucket, k := bucketName(r), key(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "tagging"):
		if err := h.reg.DeleteObjectTagging(bucket, k); err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case q.Get("uploadId") != "":
		if err := h.reg.AbortMultipartUpload(bucket, q.Get("uploadId")); err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		if err := h.reg.DeleteObject(bucket, k); err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) objectPost(w http.ResponseWriter, r *http.Request) {
	bucket, k := bucketName(r), key(r)
	q := r.URL.Query()

	switch {
	case hasQueryFlag(q, "uploads"):
		u, err := h.reg.CreateMultipartUpload(bucket, k, r.Header.Get("Content-Type"), metadataFromHeaders(r.Header))
		if err != nil {
			writeErr(w, ErrorTable, k, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, initiateMultipartUploadResult{Bucket: bucket, Key: k, UploadID: u.UploadID})
	case q.Get("uploadId") != "":
		var req completeMultipartUploadRequest
		if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, ErrorTable, k, apperr.New(apperr.InvalidArgument, "malformed CompleteMultipartUpload body"))
			return
		}
		parts := make([]CompletedPart, 0, len(req.Parts))
		for _, p := range req.Parts {
			parts = append(parts, CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
		}
		obj, err := h.reg.CompleteMultipartUpload(bucket, q.Get("uploadId"), parts)
		if err != nil {
			logFail("CompleteMultipartUpload", bucket, k, err)
			writeErr(w, ErrorTable, k, err)
			return
		}
		dispatch.WriteXML(w, http.StatusOK, completeMultipartUploadResult{Bucket: bucket, Key: obj.Key, ETag: obj.ETag})
	default:
		writeErr(w, ErrorTable, k, apperr.New(apperr.UnsupportedOperation, "unsupported object POST operation"))
	}
}

func hasQueryFlag(q map[string][]string, name string) bool {
	_, ok := q[name]
	return ok
}

func splitCopySource(header string) (bucket, key string) {
	trimmed := strings.TrimPrefix(header, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return trimmed, ""
	}
	return parts[0], parts[1]
}

func metadataFromHeaders(h http.Header) map[string]string {
	meta := map[string]string{}
	for k, v := range h {
		if strings.HasPrefix(strings.ToLower(k), "x-amz-meta-") {
			meta[strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")] = v[0]
		}
	}
	return meta
}
