// Package dispatch implements L2 of the emulator: per-envelope decode and
// encode helpers shared by every service's protocol front-end. Each
// envelope family (AWS JSON 1.x, AWS Query, S3 REST/XML, plain REST/JSON)
// gets its own file; the engines underneath never see raw HTTP, only the
// typed requests/results each service package decodes on top of these
// helpers.
package dispatch

import (
	"net/http"
	"strings"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/rs/zerolog/log"
)

// ErrorSpec is one row of a service's Kind -> wire-error mapping.
type ErrorSpec struct {
	Code       string
	HTTPStatus int
}

// ErrorTable maps the shared apperr.Kind enum to a service's concrete
// error code strings and HTTP statuses (spec.md §7). Every service owns
// one; falling back to Internal is always safe since every table is
// expected to cover it.
type ErrorTable map[apperr.Kind]ErrorSpec

// Lookup resolves err (any error, not just *apperr.Error) to a spec,
// defaulting to a 500 InternalFailure if the table has no entry or the
// error isn't an apperr.Error at all.
func (t ErrorTable) Lookup(err error) (kind apperr.Kind, message string, spec ErrorSpec) {
	kind, message = apperr.As(err)
	spec, ok := t[kind]
	if !ok {
		spec = ErrorSpec{Code: "InternalFailure", HTTPStatus: http.StatusInternalServerError}
	}
	return kind, message, spec
}

// JSONTarget splits an X-Amz-Target header of the form
// "<ServicePrefix>.<Action>" into its two parts.
func JSONTarget(r *http.Request) (prefix, action string, ok bool) {
	target := r.Header.Get("X-Amz-Target")
	idx := strings.LastIndex(target, ".")
	if idx < 0 {
		return "", "", false
	}
	return target[:idx], target[idx+1:], true
}

// LogRequest emits one debug line for a dispatched request. No service
// handler calls it; the per-request debug line comes from the request
// logger in internal/transport.
func LogRequest(service, action string, status int) {
	log.Debug().
		Str("service", service).
		Str("action", action).
		Int("status", status).
		Msg("dispatched request")
}
