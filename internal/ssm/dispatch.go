package ssm

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches AmazonSSM.* actions over AWS JSON 1.1 (spec.md
// §6.2, prefix AmazonSSM).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.ssm", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "PutParameter":
		err = h.putParameter(w, r)
	case "GetParameter":
		err = h.getParameter(w, r)
	case "DeleteParameter":
		err = h.deleteParameter(w, r)
	case "DescribeParameters":
		err = h.describeParameters(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "ssm").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.ssm", ErrorTable, err)
	}
}

func (h *Handler) putParameter(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name  string `json:"Name"`
		Type  string `json:"Type"`
		Value string `json:"Value"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	p, err := h.reg.PutParameter(req.Name, req.Type, req.Value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Version": p.Version})
	return nil
}

func (h *Handler) getParameter(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name           string `json:"Name"`
		WithDecryption bool   `json:"WithDecryption"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	p, err := h.reg.GetParameter(req.Name, req.WithDecryption)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"Parameter": map[string]any{
			"Name":    p.Name,
			"Type":    p.Type,
			"Value":   p.Value,
			"Version": p.Version,
		},
	})
	return nil
}

func (h *Handler) deleteParameter(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"Name"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteParameter(req.Name)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) describeParameters(w http.ResponseWriter, r *http.Request) error {
	params := h.reg.ListParameters()
	items := make([]map[string]any, 0, len(params))
	for _, p := range params {
		items = append(items, map[string]any{"Name": p.Name, "Type": p.Type, "Version": p.Version})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Parameters": items})
	return nil
}
