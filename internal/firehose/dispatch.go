package firehose

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches Firehose_20150804.* actions over AWS JSON 1.1
// (spec.md §6.2, prefix Firehose_20150804).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.firehose", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateDeliveryStream":
		err = h.createDeliveryStream(w, r)
	case "DeleteDeliveryStream":
		err = h.deleteDeliveryStream(w, r)
	case "DescribeDeliveryStream":
		err = h.describeDeliveryStream(w, r)
	case "ListDeliveryStreams":
		err = h.listDeliveryStreams(w, r)
	case "PutRecord":
		err = h.putRecord(w, r)
	case "PutRecordBatch":
		err = h.putRecordBatch(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "firehose").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.firehose", ErrorTable, err)
	}
}

func (h *Handler) createDeliveryStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		DeliveryStreamName string `json:"DeliveryStreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	d := h.reg.CreateDeliveryStream(req.DeliveryStreamName, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"DeliveryStreamARN": d.ARN})
	return nil
}

func (h *Handler) deleteDeliveryStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		DeliveryStreamName string `json:"DeliveryStreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.Delete(req.DeliveryStreamName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) describeDeliveryStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		DeliveryStreamName string `json:"DeliveryStreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	d, err := h.reg.Get(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"DeliveryStreamDescription": map[string]any{
			"DeliveryStreamName": d.Name,
			"DeliveryStreamARN":  d.ARN,
			"DeliveryStreamStatus": "ACTIVE",
		},
	})
	return nil
}

func (h *Handler) listDeliveryStreams(w http.ResponseWriter, r *http.Request) error {
	streams := h.reg.List()
	names := make([]string, 0, len(streams))
	for _, s := range streams {
		names = append(names, s.Name)
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"DeliveryStreamNames": names})
	return nil
}

func (h *Handler) putRecord(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		DeliveryStreamName string `json:"DeliveryStreamName"`
		Record              struct {
			Data []byte `json:"Data"`
		} `json:"Record"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	d, err := h.reg.Get(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	recordID := d.PutRecord(req.Record.Data)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"RecordId": recordID})
	return nil
}

func (h *Handler) putRecordBatch(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		DeliveryStreamName string `json:"DeliveryStreamName"`
		Records            []struct {
			Data []byte `json:"Data"`
		} `json:"Records"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	d, err := h.reg.Get(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	data := make([][]byte, len(req.Records))
	for i, rec := range req.Records {
		data[i] = rec.Data
	}
	ids := d.PutRecordBatch(data)
	items := make([]map[string]any, len(ids))
	for i, id := range ids {
		items[i] = map[string]any{"RecordId": id}
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"FailedPutCount":   0,
		"RequestResponses": items,
	})
	return nil
}
