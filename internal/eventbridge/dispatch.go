package eventbridge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches AmazonEventBridge.* actions over AWS JSON 1.1
// (spec.md §6.2, prefix AmazonEventBridge).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.eventbridge", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "PutRule":
		err = h.putRule(w, r)
	case "DeleteRule":
		err = h.deleteRule(w, r)
	case "ListRules":
		err = h.listRules(w, r)
	case "PutTargets":
		err = h.putTargets(w, r)
	case "ListTargetsByRule":
		err = h.listTargetsByRule(w, r)
	case "PutEvents":
		err = h.putEvents(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "eventbridge").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.eventbridge", ErrorTable, err)
	}
}

func (h *Handler) putRule(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name         string `json:"Name"`
		EventPattern string `json:"EventPattern"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	rule := h.reg.PutRule(req.Name, req.EventPattern)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"RuleArn": rule.ARN})
	return nil
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"Name"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteRule(req.Name)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) error {
	rules := h.reg.ListRules()
	items := make([]map[string]any, 0, len(rules))
	for _, rule := range rules {
		items = append(items, map[string]any{"Name": rule.Name, "Arn": rule.ARN, "State": rule.State})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Rules": items})
	return nil
}

func (h *Handler) putTargets(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Rule    string `json:"Rule"`
		Targets []struct {
			Id  string `json:"Id"`
			Arn string `json:"Arn"`
		} `json:"Targets"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	rule, err := h.reg.Get(req.Rule)
	if err != nil {
		return err
	}
	targets := make([]Target, 0, len(req.Targets))
	for _, t := range req.Targets {
		targets = append(targets, Target{ID: t.Id, Arn: t.Arn})
	}
	rule.PutTargets(targets)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"FailedEntryCount": 0})
	return nil
}

func (h *Handler) listTargetsByRule(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Rule string `json:"Rule"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	rule, err := h.reg.Get(req.Rule)
	if err != nil {
		return err
	}
	targets := rule.Targets()
	items := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		items = append(items, map[string]any{"Id": t.ID, "Arn": t.Arn})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Targets": items})
	return nil
}

func (h *Handler) putEvents(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Entries []struct {
			Source     string `json:"Source"`
			DetailType string `json:"DetailType"`
			Detail     string `json:"Detail"`
		} `json:"Entries"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	events := make([]RecordedEvent, len(req.Entries))
	for i, e := range req.Entries {
		events[i] = RecordedEvent{Source: e.Source, DetailType: e.DetailType, Detail: e.Detail}
	}
	ids := h.reg.PutEvents(events)
	entries := make([]map[string]any, len(ids))
	for i, id := range ids {
		entries[i] = map[string]any{"EventId": id}
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"FailedEntryCount": 0,
		"Entries":          entries,
	})
	return nil
}
