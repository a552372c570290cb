package kms

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches TrentService.* actions over AWS JSON 1.1 (spec.md
// §6.2, prefix TrentService).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.kms", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateKey":
		err = h.createKey(w, r)
	case "DescribeKey":
		err = h.describeKey(w, r)
	case "ScheduleKeyDeletion":
		err = h.scheduleKeyDeletion(w, r)
	case "ListKeys":
		err = h.listKeys(w, r)
	case "Encrypt":
		err = h.encrypt(w, r)
	case "Decrypt":
		err = h.decrypt(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "kms").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.kms", ErrorTable, err)
	}
}

func (h *Handler) createKey(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Description string `json:"Description"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	k := h.reg.CreateKey(req.Description, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"KeyMetadata": map[string]any{"KeyId": k.KeyID, "Arn": k.ARN, "Description": k.Description, "Enabled": k.Enabled},
	})
	return nil
}

func (h *Handler) describeKey(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		KeyId string `json:"KeyId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	k, err := h.reg.Get(req.KeyId)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"KeyMetadata": map[string]any{"KeyId": k.KeyID, "Arn": k.ARN, "Description": k.Description, "Enabled": k.Enabled},
	})
	return nil
}

func (h *Handler) scheduleKeyDeletion(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		KeyId string `json:"KeyId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	if err := h.reg.ScheduleKeyDeletion(req.KeyId); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"KeyId": req.KeyId})
	return nil
}

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) error {
	keys := h.reg.ListKeys()
	items := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, map[string]any{"KeyId": k.KeyID, "KeyArn": k.ARN})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Keys": items})
	return nil
}

func (h *Handler) encrypt(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		KeyId     string `json:"KeyId"`
		Plaintext []byte `json:"Plaintext"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	blob, err := h.reg.Encrypt(req.KeyId, req.Plaintext)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"KeyId":          req.KeyId,
		"CiphertextBlob": base64.StdEncoding.EncodeToString([]byte(blob)),
	})
	return nil
}

func (h *Handler) decrypt(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		CiphertextBlob []byte `json:"CiphertextBlob"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	keyID, plaintext, err := h.reg.Decrypt(string(req.CiphertextBlob))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"KeyId":     keyID,
		"Plaintext": plaintext,
	})
	return nil
}
