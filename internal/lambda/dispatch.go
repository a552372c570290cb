package lambda

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

// Handler dispatches Lambda's plain REST+JSON surface (spec.md §6.4:
// path-routed, x-amzn-ErrorType errors).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers Lambda's 2015-03-31 function routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/2015-03-31/functions", func(r chi.Router) {
		r.Post("/", h.createFunction)
		r.Get("/", h.listFunctions)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getFunction)
			r.Delete("/", h.deleteFunction)
			r.Post("/invocations", h.invoke)
		})
	})
}

func fail(w http.ResponseWriter, action string, err error) {
	log.Debug().Str("service", "lambda").Str("action", action).Err(err).Msg("request failed")
	dispatch.WriteRestJSONError(w, ErrorTable, err)
}

type createFunctionRequest struct {
	FunctionName string `json:"FunctionName"`
	Runtime      string `json:"Runtime"`
	Handler      string `json:"Handler"`
	Role         string `json:"Role"`
}

type functionConfigurationWire struct {
	FunctionName string `json:"FunctionName"`
	FunctionArn  string `json:"FunctionArn"`
	Runtime      string `json:"Runtime"`
	Handler      string `json:"Handler"`
	Role         string `json:"Role"`
	LastModified string `json:"LastModified"`
}

func toWire(fn *Function) functionConfigurationWire {
	return functionConfigurationWire{
		FunctionName: fn.Name,
		FunctionArn:  fn.ARN,
		Runtime:      fn.Runtime,
		Handler:      fn.Handler,
		Role:         fn.Role,
		LastModified: fn.LastModified,
	}
}

func (h *Handler) createFunction(w http.ResponseWriter, r *http.Request) {
	var req createFunctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "CreateFunction", err)
		return
	}
	fn := h.reg.CreateFunction(req.FunctionName, req.Runtime, req.Handler, req.Role, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, "application/json", http.StatusCreated, toWire(fn))
}

func (h *Handler) getFunction(w http.ResponseWriter, r *http.Request) {
	fn, err := h.reg.Get(chi.URLParam(r, "name"))
	if err != nil {
		fail(w, "GetFunction", err)
		return
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{"Configuration": toWire(fn)})
}

func (h *Handler) listFunctions(w http.ResponseWriter, r *http.Request) {
	fns := h.reg.List()
	wires := make([]functionConfigurationWire, 0, len(fns))
	for _, fn := range fns {
		wires = append(wires, toWire(fn))
	}
	dispatch.WriteJSON(w, "application/json", http.StatusOK, map[string]any{"Functions": wires})
}

func (h *Handler) deleteFunction(w http.ResponseWriter, r *http.Request) {
	h.reg.Delete(chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invoke(w http.ResponseWriter, r *http.Request) {
	out, err := h.reg.Invoke(chi.URLParam(r, "name"))
	if err != nil {
		fail(w, "Invoke", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
