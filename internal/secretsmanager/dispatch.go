package secretsmanager

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches secretsmanager.* actions over AWS JSON 1.1
// (spec.md §6.2, prefix secretsmanager).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.secretsmanager", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateSecret":
		err = h.createSecret(w, r)
	case "DescribeSecret":
		err = h.describeSecret(w, r)
	case "GetSecretValue":
		err = h.getSecretValue(w, r)
	case "PutSecretValue":
		err = h.putSecretValue(w, r)
	case "DeleteSecret":
		err = h.deleteSecret(w, r)
	case "ListSecrets":
		err = h.listSecrets(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "secretsmanager").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.secretsmanager", ErrorTable, err)
	}
}

func (h *Handler) createSecret(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name         string `json:"Name"`
		Description  string `json:"Description"`
		SecretString string `json:"SecretString"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	s, err := h.reg.CreateSecret(req.Name, req.Description, req.SecretString, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"ARN":       s.ARN,
		"Name":      s.Name,
		"VersionId": s.versionID,
	})
	return nil
}

func (h *Handler) describeSecret(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		SecretId string `json:"SecretId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	s, err := h.reg.Get(req.SecretId)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"ARN":         s.ARN,
		"Name":        s.Name,
		"Description": s.Description,
	})
	return nil
}

func (h *Handler) getSecretValue(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		SecretId string `json:"SecretId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	value, versionID, err := h.reg.GetSecretValue(req.SecretId)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"Name":         req.SecretId,
		"SecretString": value,
		"VersionId":    versionID,
	})
	return nil
}

func (h *Handler) putSecretValue(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		SecretId     string `json:"SecretId"`
		SecretString string `json:"SecretString"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	versionID, err := h.reg.PutSecretValue(req.SecretId, req.SecretString)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"Name":      req.SecretId,
		"VersionId": versionID,
	})
	return nil
}

func (h *Handler) deleteSecret(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		SecretId string `json:"SecretId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteSecret(req.SecretId)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Name": req.SecretId})
	return nil
}

func (h *Handler) listSecrets(w http.ResponseWriter, r *http.Request) error {
	secrets := h.reg.ListSecrets()
	items := make([]map[string]any, 0, len(secrets))
	for _, s := range secrets {
		items = append(items, map[string]any{"ARN": s.ARN, "Name": s.Name})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"SecretList": items})
	return nil
}
