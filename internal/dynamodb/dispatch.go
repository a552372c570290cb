package dynamodb

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.0"

// Handler dispatches DynamoDB's AWS JSON surface (spec.md §6.2, prefix
// DynamoDB_20120810).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers DynamoDB's single POST route on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, action, ok := dispatch.JSONTarget(r)
	if !ok {
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.dynamodb.v20120810", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateTable":
		err = h.createTable(w, r)
	case "DeleteTable":
		err = h.deleteTable(w, r)
	case "ListTables":
		err = h.listTables(w, r)
	case "DescribeTable":
		err = h.describeTable(w, r)
	case "PutItem":
		err = h.putItem(w, r)
	case "GetItem":
		err = h.getItem(w, r)
	case "DeleteItem":
		err = h.deleteItem(w, r)
	case "UpdateItem":
		err = h.updateItem(w, r)
	case "Query":
		err = h.query(w, r)
	case "Scan":
		err = h.scan(w, r)
	case "BatchGetItem":
		err = h.batchGetItem(w, r)
	case "BatchWriteItem":
		err = h.batchWriteItem(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "dynamodb").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.dynamodb.v20120810", ErrorTable, err)
	}
}

type keySchemaWire struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type createTableRequest struct {
	TableName string          `json:"TableName"`
	KeySchema []keySchemaWire `json:"KeySchema"`
}

type tableDescriptionWire struct {
	TableName   string `json:"TableName"`
	TableArn    string `json:"TableArn"`
	TableStatus string `json:"TableStatus"`
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) error {
	var req createTableRequest
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	schema := make([]KeySchemaElement, 0, len(req.KeySchema))
	for _, k := range req.KeySchema {
		schema = append(schema, KeySchemaElement{AttributeName: k.AttributeName, KeyType: k.KeyType})
	}
	t, err := h.reg.CreateTable(req.TableName, schema, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"TableDescription": tableDescriptionWire{TableName: t.Name, TableArn: t.ARN, TableStatus: "ACTIVE"},
	})
	return nil
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName string `json:"TableName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteTable(req.TableName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) error {
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"TableNames": h.reg.ListTables()})
	return nil
}

func (h *Handler) describeTable(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName string `json:"TableName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"Table": tableDescriptionWire{TableName: t.Name, TableArn: t.ARN, TableStatus: "ACTIVE"},
	})
	return nil
}

func (h *Handler) putItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName string `json:"TableName"`
		Item      Item   `json:"Item"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	if err := t.PutItem(req.Item); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName string `json:"TableName"`
		Key       Item   `json:"Key"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	item, err := t.GetItem(req.Key)
	if err != nil {
		return err
	}
	body := map[string]any{}
	if item != nil {
		body["Item"] = item
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, body)
	return nil
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName    string `json:"TableName"`
		Key          Item   `json:"Key"`
		ReturnValues string `json:"ReturnValues"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	old, err := t.DeleteItem(req.Key)
	if err != nil {
		return err
	}
	body := map[string]any{}
	if req.ReturnValues == "ALL_OLD" && old != nil {
		body["Attributes"] = old
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, body)
	return nil
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName                 string                    `json:"TableName"`
		Key                       Item                      `json:"Key"`
		UpdateExpression          string                    `json:"UpdateExpression"`
		ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues"`
		ReturnValues              string                    `json:"ReturnValues"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	actions, err := parseUpdateExpression(req.UpdateExpression, req.ExpressionAttributeValues)
	if err != nil {
		return err
	}
	before, after, err := t.UpdateItem(req.Key, actions)
	if err != nil {
		return err
	}
	body := map[string]any{}
	switch req.ReturnValues {
	case "ALL_OLD":
		if before != nil {
			body["Attributes"] = before
		}
	case "ALL_NEW":
		body["Attributes"] = after
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, body)
	return nil
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName                 string                    `json:"TableName"`
		ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	var hashValue AttributeValue
	for _, v := range req.ExpressionAttributeValues {
		hashValue = v
		break
	}
	items := t.Query(hashValue)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Items": items, "Count": len(items)})
	return nil
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		TableName string `json:"TableName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	t, err := h.reg.Get(req.TableName)
	if err != nil {
		return err
	}
	items := t.Scan()
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Items": items, "Count": len(items)})
	return nil
}

const maxBatchSize = 25

func (h *Handler) batchGetItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		RequestItems map[string]struct {
			Keys []Item `json:"Keys"`
		} `json:"RequestItems"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	responses := map[string][]Item{}
	unprocessed := map[string][]Item{}
	for tableName, block := range req.RequestItems {
		t, err := h.reg.Get(tableName)
		if err != nil {
			unprocessed[tableName] = block.Keys
			continue
		}
		for i, key := range block.Keys {
			if i >= maxBatchSize {
				unprocessed[tableName] = append(unprocessed[tableName], block.Keys[i:]...)
				break
			}
			item, err := t.GetItem(key)
			if err != nil || item == nil {
				continue
			}
			responses[tableName] = append(responses[tableName], item)
		}
	}
	body := map[string]any{"Responses": responses}
	if len(unprocessed) > 0 {
		body["UnprocessedKeys"] = unprocessed
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, body)
	return nil
}

func (h *Handler) batchWriteItem(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		RequestItems map[string][]struct {
			PutRequest *struct {
				Item Item `json:"Item"`
			} `json:"PutRequest"`
			DeleteRequest *struct {
				Key Item `json:"Key"`
			} `json:"DeleteRequest"`
		} `json:"RequestItems"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	unprocessed := map[string][]any{}
	for tableName, writes := range req.RequestItems {
		t, err := h.reg.Get(tableName)
		if err != nil {
			for _, w := range writes {
				unprocessed[tableName] = append(unprocessed[tableName], w)
			}
			continue
		}
		for i, write := range writes {
			if i >= maxBatchSize {
				unprocessed[tableName] = append(unprocessed[tableName], write)
				continue
			}
			switch {
			case write.PutRequest != nil:
				_ = t.PutItem(write.PutRequest.Item)
			case write.DeleteRequest != nil:
				_, _ = t.DeleteItem(write.DeleteRequest.Key)
			}
		}
	}
	body := map[string]any{}
	if len(unprocessed) > 0 {
		body["UnprocessedItems"] = unprocessed
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, body)
	return nil
}
