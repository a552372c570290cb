package memorydb

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const contentType = "application/x-amz-json-1.1"

// Handler dispatches AmazonMemoryDB.* actions over AWS JSON 1.1
// (spec.md §6.2, prefix AmazonMemoryDB).
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
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.memorydb", ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateCluster":
		err = h.createCluster(w, r)
	case "DeleteCluster":
		err = h.deleteCluster(w, r)
	case "DescribeClusters":
		err = h.describeClusters(w, r)
	case "TagResource":
		err = h.tagResource(w, r)
	case "UntagResource":
		err = h.untagResource(w, r)
	case "ListTags":
		err = h.listTags(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "memorydb").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, "com.amazonaws.memorydb", ErrorTable, err)
	}
}

func clusterWire(c *Cluster) map[string]any {
	return map[string]any{
		"Name":     c.Name,
		"ARN":      c.ARN,
		"NodeType": c.NodeType,
		"Status":   c.Status,
	}
}

func (h *Handler) createCluster(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ClusterName string `json:"ClusterName"`
		NodeType    string `json:"NodeType"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	c := h.reg.CreateCluster(req.ClusterName, req.NodeType, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Cluster": clusterWire(c)})
	return nil
}

func (h *Handler) deleteCluster(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ClusterName string `json:"ClusterName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.Delete(req.ClusterName)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) describeClusters(w http.ResponseWriter, r *http.Request) error {
	clusters := h.reg.List()
	items := make([]map[string]any, 0, len(clusters))
	for _, c := range clusters {
		items = append(items, clusterWire(c))
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Clusters": items})
	return nil
}

// arnToName recovers a cluster's name from its ARN suffix ("cluster/<name>"),
// since the store keys clusters by name but the wire API tags by ARN.
func arnToName(arn string) string {
	for i := len(arn) - 1; i >= 0; i-- {
		if arn[i] == '/' {
			return arn[i+1:]
		}
	}
	return arn
}

func (h *Handler) tagResource(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ResourceArn string            `json:"ResourceArn"`
		Tags        map[string]string `json:"Tags"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	if err := h.reg.Tag(arnToName(req.ResourceArn), req.Tags); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) untagResource(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ResourceArn string   `json:"ResourceArn"`
		TagKeys     []string `json:"TagKeys"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	if err := h.reg.Untag(arnToName(req.ResourceArn), req.TagKeys); err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ResourceArn string `json:"ResourceArn"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	tags, err := h.reg.Tags(arnToName(req.ResourceArn))
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"TagList": tags})
	return nil
}
