package s3

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Registry) {
	t.Helper()
	reg := NewRegistry(identity.New("", ""), identity.NewClock())
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, reg
}

func TestDispatchPutGetRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/demo", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPut, srv.URL+"/demo/k", strings.NewReader("Hello"))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `"8b1a9953c4611296a827abf8c47804d7"`, resp.Header.Get("ETag"))

	resp, err = http.Get(srv.URL + "/demo/k")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Hello", string(body))
	require.Equal(t, `"8b1a9953c4611296a827abf8c47804d7"`, resp.Header.Get("ETag"))
}

func TestDispatchRangeRead(t *testing.T) {
	srv, _ := newTestServer(t)

	mustDo(t, http.MethodPut, srv.URL+"/demo", nil, nil)
	mustDo(t, http.MethodPut, srv.URL+"/demo/k", strings.NewReader("0123456789"), nil)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/demo/k", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=2-5")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	require.Equal(t, "bytes 2-5/10", resp.Header.Get("Content-Range"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "2345", string(body))
}

func TestDispatchNonExistentObjectReturnsNoSuchKey(t *testing.T) {
	srv, _ := newTestServer(t)
	mustDo(t, http.MethodPut, srv.URL+"/demo", nil, nil)

	resp, err := http.Get(srv.URL + "/demo/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var wireErr struct {
		XMLName xml.Name `xml:"Error"`
		Code    string   `xml:"Code"`
	}
	require.NoError(t, xml.Unmarshal(body, &wireErr))
	require.Equal(t, "NoSuchKey", wireErr.Code)
}

func TestDispatchNonExistentBucketReturnsNoSuchBucket(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/missing?location")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var wireErr struct {
		XMLName xml.Name `xml:"Error"`
		Code    string   `xml:"Code"`
	}
	require.NoError(t, xml.Unmarshal(body, &wireErr))
	require.Equal(t, "NoSuchBucket", wireErr.Code)
}

func TestDispatchMultipartUploadOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	mustDo(t, http.MethodPut, srv.URL+"/demo", nil, nil)

	resp := mustDo(t, http.MethodPost, srv.URL+"/demo/big?uploads", nil, nil)
	var initiated initiateMultipartUploadResult
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&initiated))
	require.NotEmpty(t, initiated.UploadID)

	partA := strings.Repeat("A", 5*1024*1024)
	resp = mustDo(t, http.MethodPut, srv.URL+"/demo/big?partNumber=1&uploadId="+initiated.UploadID, strings.NewReader(partA), nil)
	etag1 := resp.Header.Get("ETag")
	require.NotEmpty(t, etag1)

	resp = mustDo(t, http.MethodPut, srv.URL+"/demo/big?partNumber=2&uploadId="+initiated.UploadID, strings.NewReader("B"), nil)
	etag2 := resp.Header.Get("ETag")
	require.NotEmpty(t, etag2)

	completeBody := `<CompleteMultipartUpload>` +
		`<Part><PartNumber>1</PartNumber><ETag>` + etag1 + `</ETag></Part>` +
		`<Part><PartNumber>2</PartNumber><ETag>` + etag2 + `</ETag></Part>` +
		`</CompleteMultipartUpload>`
	resp = mustDo(t, http.MethodPost, srv.URL+"/demo/big?uploadId="+initiated.UploadID, strings.NewReader(completeBody), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/demo/big")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, partA+"B", string(body))
}

func mustDo(t *testing.T, method, url string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
