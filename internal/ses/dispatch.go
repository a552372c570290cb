package ses

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

// Handler dispatches SES v2's plain REST+JSON surface (spec.md §6.4).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers SES v2's identity and email-sending routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/v2/email/identities", func(r chi.Router) {
		r.Post("/", h.createIdentity)
		r.Get("/", h.listIdentities)
		r.Route("/{value}", func(r chi.Router) {
			r.Get("/", h.getIdentity)
			r.Delete("/", h.deleteIdentity)
		})
	})
	r.Post("/v2/email/outbound-emails", h.sendEmail)
}

func fail(w http.ResponseWriter, action string, err error) {
	log.Debug().Str("service", "ses").Str("action", action).Err(err).Msg("request failed")
	dispatch.WriteRestJSONError(w, ErrorTable, err)
}

func (h *Handler) createIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailIdentity string `json:"EmailIdentity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "CreateEmailIdentity", err)
		return
	}
	id := h.reg.VerifyIdentity(req.EmailIdentity, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{
		"IdentityType":      "EMAIL_ADDRESS",
		"VerifiedForSendingStatus": id.VerificationStatus == "Success",
	})
}

func (h *Handler) getIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := h.reg.Get(chi.URLParam(r, "value"))
	if err != nil {
		fail(w, "GetEmailIdentity", err)
		return
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{
		"IdentityType":      "EMAIL_ADDRESS",
		"VerificationStatus": id.VerificationStatus,
	})
}

func (h *Handler) listIdentities(w http.ResponseWriter, r *http.Request) {
	ids := h.reg.ListIdentities()
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{"IdentityName": id.Value, "IdentityType": "EMAIL_ADDRESS"})
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{"EmailIdentities": items})
}

func (h *Handler) deleteIdentity(w http.ResponseWriter, r *http.Request) {
	h.reg.DeleteIdentity(chi.URLParam(r, "value"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromEmailAddress string `json:"FromEmailAddress"`
		Destination      struct {
			ToAddresses []string `json:"ToAddresses"`
		} `json:"Destination"`
		Content struct {
			Simple struct {
				Subject struct {
					Data string `json:"Data"`
				} `json:"Subject"`
			} `json:"Simple"`
		} `json:"Content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "SendEmail", err)
		return
	}
	id := h.reg.SendEmail(req.FromEmailAddress, req.Destination.ToAddresses, req.Content.Simple.Subject.Data)
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{"MessageId": id})
}
