package kinesis

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches Kinesis_20131202.* actions over AWS JSON 1.1
// (spec.md §6.2).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers the single POST / entry point.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, action, ok := dispatch.JSONTarget(r)
	if !ok {
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.kinesis", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateStream":
		err = h.createStream(w, r)
	case "DeleteStream":
		err = h.deleteStream(w, r)
	case "ListStreams":
		err = h.listStreams(w, r)
	case "DescribeStream":
		err = h.describeStream(w, r)
	case "PutRecord":
		err = h.putRecord(w, r)
	case "GetShardIterator":
		err = h.getShardIterator(w, r)
	case "GetRecords":
		err = h.getRecords(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "kinesis").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.kinesis", ErrorTable, err)
	}
}

func (h *Handler) createStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StreamName string `json:"StreamName"`
		ShardCount int    `json:"ShardCount"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	if _, err := h.reg.CreateStream(req.StreamName, req.ShardCount); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) deleteStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StreamName string `json:"StreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteStream(req.StreamName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listStreams(w http.ResponseWriter, r *http.Request) error {
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"StreamNames": h.reg.ListStreams()})
	return nil
}

type shardWire struct {
	ShardId string `json:"ShardId"`
}

func (h *Handler) describeStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StreamName string `json:"StreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	s, err := h.reg.Get(req.StreamName)
	if err != nil {
		return err
	}
	shards := make([]shardWire, 0, len(s.ShardIDs()))
	for _, id := range s.ShardIDs() {
		shards = append(shards, shardWire{ShardId: id})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"StreamDescription": map[string]any{
			"StreamName":   s.Name,
			"StreamARN":    s.ARN,
			"StreamStatus": "ACTIVE",
			"Shards":       shards,
		},
	})
	return nil
}

func (h *Handler) putRecord(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StreamName   string `json:"StreamName"`
		PartitionKey string `json:"PartitionKey"`
		Data         []byte `json:"Data"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	s, err := h.reg.Get(req.StreamName)
	if err != nil {
		return err
	}
	shardID, seq, err := s.PutRecord(req.PartitionKey, req.Data)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"ShardId":        shardID,
		"SequenceNumber": seq,
	})
	return nil
}

func (h *Handler) getShardIterator(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StreamName             string `json:"StreamName"`
		ShardId                string `json:"ShardId"`
		ShardIteratorType      string `json:"ShardIteratorType"`
		StartingSequenceNumber string `json:"StartingSequenceNumber"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	iter, err := h.reg.GetShardIterator(req.StreamName, req.ShardId, req.ShardIteratorType, req.StartingSequenceNumber)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"ShardIterator": iter})
	return nil
}

type recordWire struct {
	SequenceNumber string `json:"SequenceNumber"`
	PartitionKey   string `json:"PartitionKey"`
	Data           string `json:"Data"`
}

func (h *Handler) getRecords(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ShardIterator string `json:"ShardIterator"`
		Limit         int    `json:"Limit"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	records, next, err := h.reg.GetRecords(req.ShardIterator, req.Limit)
	if err != nil {
		return err
	}
	wires := make([]recordWire, 0, len(records))
	for _, rec := range records {
		wires = append(wires, recordWire{
			SequenceNumber: rec.SequenceNumber,
			PartitionKey:   rec.PartitionKey,
			Data:           base64.StdEncoding.EncodeToString(rec.Data),
		})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"Records":       wires,
		"NextShardIterator": next,
	})
	return nil
}
