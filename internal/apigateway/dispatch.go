package apigateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

// Handler dispatches API Gateway's plain REST+JSON management surface
// (spec.md §6.4).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers the /restapis routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/restapis", func(r chi.Router) {
		r.Post("/", h.createRestAPI)
		r.Get("/", h.listRestAPIs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getRestAPI)
			r.Delete("/", h.deleteRestAPI)
		})
	})
}

func fail(w http.ResponseWriter, action string, err error) {
	log.Debug().Str("service", "apigateway").Str("action", action).Err(err).Msg("request failed")
	dispatch.WriteRestJSONError(w, ErrorTable, err)
}

func wire(a *RestAPI) map[string]any {
	return map[string]any{"id": a.ID, "name": a.Name, "description": a.Description, "createdDate": a.CreatedAt}
}

func (h *Handler) createRestAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "CreateRestApi", err)
		return
	}
	api := h.reg.CreateRestAPI(req.Name, req.Description, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, "application/json", http.StatusCreated, wire(api))
}

func (h *Handler) getRestAPI(w http.ResponseWriter, r *http.Request) {
	api, err := h.reg.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, "GetRestApi", err)
		return
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, wire(api))
}

func (h *Handler) listRestAPIs(w http.ResponseWriter, r *http.Request) {
	apis := h.reg.List()
	items := make([]map[string]any, 0, len(apis))
	for _, a := range apis {
		items = append(items, wire(a))
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) deleteRestAPI(w http.ResponseWriter, r *http.Request) {
	h.reg.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
