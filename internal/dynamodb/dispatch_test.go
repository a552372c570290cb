package dynamodb

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := NewRegistry(identity.New("", ""))
	r := chi.NewRouter()
	NewHandler(reg).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postAction(t *testing.T, srv *httptest.Server, action string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/", bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("X-Amz-Target", "DynamoDB_20120810."+action)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestDispatchCreateTablePutGetUpdateItem(t *testing.T) {
	srv := newTestServer(t)

	resp := postAction(t, srv, "CreateTable", createTableRequest{
		TableName: "widgets",
		KeySchema: []keySchemaWire{{AttributeName: "pk", KeyType: "HASH"}},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postAction(t, srv, "PutItem", map[string]any{
		"TableName": "widgets",
		"Item": map[string]AttributeValue{
			"pk":   {S: "w-1"},
			"name": {S: "Gizmo"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Item Item
	}
	resp = postAction(t, srv, "GetItem", map[string]any{
		"TableName": "widgets",
		"Key":       map[string]AttributeValue{"pk": {S: "w-1"}},
	}, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Gizmo", got.Item["name"].S)

	var updated struct {
		Attributes Item
	}
	resp = postAction(t, srv, "UpdateItem", map[string]any{
		"TableName":        "widgets",
		"Key":              map[string]AttributeValue{"pk": {S: "w-1"}},
		"UpdateExpression": "SET name = :n",
		"ExpressionAttributeValues": map[string]AttributeValue{
			":n": {S: "Widget"},
		},
		"ReturnValues": "ALL_NEW",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Widget", updated.Attributes["name"].S)
}

func TestDispatchDescribeTableMissingIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	resp := postAction(t, srv, "DescribeTable", map[string]any{"TableName": "missing"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchUnknownActionIsUnsupportedOperation(t *testing.T) {
	srv := newTestServer(t)
	resp := postAction(t, srv, "NotARealAction", struct{}{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchBatchWriteAndGetItem(t *testing.T) {
	srv := newTestServer(t)
	postAction(t, srv, "CreateTable", createTableRequest{
		TableName: "widgets",
		KeySchema: []keySchemaWire{{AttributeName: "pk", KeyType: "HASH"}},
	}, nil)

	resp := postAction(t, srv, "BatchWriteItem", map[string]any{
		"RequestItems": map[string]any{
			"widgets": []map[string]any{
				{"PutRequest": map[string]any{"Item": map[string]AttributeValue{"pk": {S: "a"}}}},
				{"PutRequest": map[string]any{"Item": map[string]AttributeValue{"pk": {S: "b"}}}},
			},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Responses map[string][]Item
	}
	resp = postAction(t, srv, "BatchGetItem", map[string]any{
		"RequestItems": map[string]any{
			"widgets": map[string]any{
				"Keys": []map[string]AttributeValue{
					{"pk": {S: "a"}},
					{"pk": {S: "b"}},
				},
			},
		},
	}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Responses["widgets"], 2)
}
