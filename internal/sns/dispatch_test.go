package sns

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
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

func postQuery(t *testing.T, srv *httptest.Server, action string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("Action", action)
	resp, err := http.PostForm(srv.URL+"/", form)
	require.NoError(t, err)
	return resp
}

func TestDispatchCreateTopicPublishSubscribe(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postQuery(t, srv, "CreateTopic", url.Values{"Name": {"orders"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		XMLName xml.Name `xml:"CreateTopicResponse"`
		Result  struct {
			TopicArn string `xml:"TopicArn"`
		} `xml:"CreateTopicResult"`
	}
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Contains(t, created.Result.TopicArn, "orders")

	resp = postQuery(t, srv, "Subscribe", url.Values{
		"TopicArn": {created.Result.TopicArn},
		"Protocol": {"http"},
		"Endpoint": {"http://example.com/hook"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postQuery(t, srv, "Publish", url.Values{
		"TopicArn": {created.Result.TopicArn},
		"Message":  {"hello"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var published struct {
		Result struct {
			MessageId string `xml:"MessageId"`
		} `xml:"PublishResult"`
	}
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&published))
	resp.Body.Close()
	require.NotEmpty(t, published.Result.MessageId)
}

func TestDispatchUnknownActionIsInvalidAction(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postQuery(t, srv, "NotARealAction", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchGetTopicAttributesMissingIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postQuery(t, srv, "GetTopicAttributes", url.Values{"TopicArn": {"arn:aws:sns:us-east-1:000000000000:missing"}})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDispatchDeleteTopicThenListTopicsIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postQuery(t, srv, "CreateTopic", url.Values{"Name": {"orders"}})
	var created struct {
		Result struct {
			TopicArn string `xml:"TopicArn"`
		} `xml:"CreateTopicResult"`
	}
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	resp = postQuery(t, srv, "DeleteTopic", url.Values{"TopicArn": {created.Result.TopicArn}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postQuery(t, srv, "ListTopics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Result struct {
			Topics []struct {
				TopicArn string `xml:"TopicArn"`
			} `xml:"Topics>member"`
		} `xml:"ListTopicsResult"`
	}
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Empty(t, listed.Result.Topics)
}
