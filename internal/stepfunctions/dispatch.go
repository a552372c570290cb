package stepfunctions

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.0"

// Handler dispatches AWSStates.* actions over AWS JSON 1.0 (spec.md
// §6.2, prefix AWSStates).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.states", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateStateMachine":
		err = h.createStateMachine(w, r)
	case "DescribeStateMachine":
		err = h.describeStateMachine(w, r)
	case "DeleteStateMachine":
		err = h.deleteStateMachine(w, r)
	case "ListStateMachines":
		err = h.listStateMachines(w, r)
	case "StartExecution":
		err = h.startExecution(w, r)
	case "DescribeExecution":
		err = h.describeExecution(w, r)
	case "StopExecution":
		err = h.stopExecution(w, r)
	case "GetExecutionHistory":
		err = h.getExecutionHistory(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "stepfunctions").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.states", ErrorTable, err)
	}
}

func (h *Handler) createStateMachine(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name       string `json:"name"`
		Definition string `json:"definition"`
		RoleArn    string `json:"roleArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	sm, err := h.reg.CreateStateMachine(req.Name, req.Definition, req.RoleArn, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"stateMachineArn": sm.ARN,
		"creationDate":    sm.CreatedAt,
	})
	return nil
}

func (h *Handler) describeStateMachine(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StateMachineArn string `json:"stateMachineArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	sm, err := h.reg.GetStateMachine(req.StateMachineArn)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"name":            sm.Name,
		"stateMachineArn": sm.ARN,
		"definition":      sm.Definition,
		"roleArn":         sm.RoleArn,
		"creationDate":    sm.CreatedAt,
	})
	return nil
}

func (h *Handler) deleteStateMachine(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StateMachineArn string `json:"stateMachineArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeleteStateMachine(req.StateMachineArn)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listStateMachines(w http.ResponseWriter, r *http.Request) error {
	sms := h.reg.ListStateMachines()
	items := make([]map[string]any, 0, len(sms))
	for _, sm := range sms {
		items = append(items, map[string]any{
			"name":            sm.Name,
			"stateMachineArn": sm.ARN,
			"creationDate":    sm.CreatedAt,
		})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"stateMachines": items})
	return nil
}

func (h *Handler) startExecution(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		StateMachineArn string `json:"stateMachineArn"`
		Name            string `json:"name"`
		Input           string `json:"input"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	exec, err := h.reg.StartExecution(req.StateMachineArn, req.Name, req.Input, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"executionArn": exec.ARN,
		"startDate":    exec.StartDate,
	})
	return nil
}

func (h *Handler) describeExecution(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ExecutionArn string `json:"executionArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	exec, err := h.reg.DescribeExecution(req.ExecutionArn)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{
		"executionArn":    exec.ARN,
		"stateMachineArn": exec.StateMachineArn,
		"name":            exec.Name,
		"status":          string(exec.Status),
		"startDate":       exec.StartDate,
		"stopDate":        exec.StopDate,
		"input":           exec.Input,
	})
	return nil
}

func (h *Handler) stopExecution(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ExecutionArn string `json:"executionArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.reg.StopExecution(req.ExecutionArn, now); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"stopDate": now})
	return nil
}

func (h *Handler) getExecutionHistory(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ExecutionArn string `json:"executionArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	events, err := h.reg.GetExecutionHistory(req.ExecutionArn)
	if err != nil {
		return err
	}
	items := make([]map[string]any, 0, len(events))
	for _, e := range events {
		items = append(items, map[string]any{"id": e.ID, "type": e.Type, "timestamp": e.Timestamp})
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"events": items})
	return nil
}
