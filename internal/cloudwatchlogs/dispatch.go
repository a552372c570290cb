package cloudwatchlogs

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches Logs_20140328.* actions over AWS JSON 1.1
// (spec.md §6.2, prefix Logs_20140328).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.logs", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateLogGroup":
		err = h.createLogGroup(w, r)
	case "DeleteLogGroup":
		err = h.deleteLogGroup(w, r)
	case "DescribeLogGroups":
		err = h.describeLogGroups(w, r)
	case "CreateLogStream":
		err = h.createLogStream(w, r)
	case "PutLogEvents":
		err = h.putLogEvents(w, r)
	case "GetLogEvents":
		err = h.getLogEvents(w, r)
	case "FilterLogEvents":
		err = h.filterLogEvents(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "cloudwatchlogs").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.logs", ErrorTable, err)
	}
}

func (h *Handler) createLogGroup(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName string `json:"logGroupName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	if _, err := h.reg.CreateLogGroup(req.LogGroupName, time.Now().UnixMilli()); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) deleteLogGroup(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName string `json:"logGroupName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteLogGroup(req.LogGroupName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) describeLogGroups(w http.ResponseWriter, r *http.Request) error {
	names := h.reg.ListLogGroups()
	items := make([]map[string]any, 0, len(names))
	for _, n := range names {
		items = append(items, map[string]any{"logGroupName": n})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"logGroups": items})
	return nil
}

func (h *Handler) createLogStream(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName  string `json:"logGroupName"`
		LogStreamName string `json:"logStreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	g, err := h.reg.GetLogGroup(req.LogGroupName)
	if err != nil {
		return err
	}
	g.CreateLogStream(req.LogStreamName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

type eventWire struct {
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

func (h *Handler) putLogEvents(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName  string      `json:"logGroupName"`
		LogStreamName string      `json:"logStreamName"`
		LogEvents     []eventWire `json:"logEvents"`
		SequenceToken string      `json:"sequenceToken"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	g, err := h.reg.GetLogGroup(req.LogGroupName)
	if err != nil {
		return err
	}
	events := make([]Event, 0, len(req.LogEvents))
	for _, e := range req.LogEvents {
		events = append(events, Event{Timestamp: e.Timestamp, Message: e.Message})
	}
	if err := g.PutLogEvents(req.LogStreamName, events, req.SequenceToken); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"nextSequenceToken": identityToken()})
	return nil
}

// identityToken stamps an opaque, always-accepted sequence token (Open
// Question 4: this emulator never rejects PutLogEvents over sequencing).
func identityToken() string { return "0" }

func (h *Handler) getLogEvents(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName  string `json:"logGroupName"`
		LogStreamName string `json:"logStreamName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	g, err := h.reg.GetLogGroup(req.LogGroupName)
	if err != nil {
		return err
	}
	events, err := g.GetLogEvents(req.LogStreamName)
	if err != nil {
		return err
	}
	wires := make([]eventWire, 0, len(events))
	for _, e := range events {
		wires = append(wires, eventWire{Timestamp: e.Timestamp, Message: e.Message})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"events": wires})
	return nil
}

func (h *Handler) filterLogEvents(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		LogGroupName  string `json:"logGroupName"`
		FilterPattern string `json:"filterPattern"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	g, err := h.reg.GetLogGroup(req.LogGroupName)
	if err != nil {
		return err
	}
	events := g.FilterLogEvents(req.FilterPattern)
	wires := make([]eventWire, 0, len(events))
	for _, e := range events {
		wires = append(wires, eventWire{Timestamp: e.Timestamp, Message: e.Message})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"events": wires})
	return nil
}
