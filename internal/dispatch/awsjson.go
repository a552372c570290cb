package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON encodes v as the AWS JSON 1.x response body.
func WriteJSON(w http.ResponseWriter, contentType string, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError renders an AWS JSON 1.x protocol error: a JSON body
// carrying __type and message, per spec.md §4.1's "JSON errors carry
// __type and message" rule. prefix is the service's error namespace
// (e.g. "com.amazonaws.sqs"), used to build the "__type" value the way
// real AWS JSON services do ("<prefix>#<Code>" for modelled exceptions, though
// most SDKs only inspect the suffix after '#').
func WriteJSONError(w http.ResponseWriter, contentType, prefix string, table ErrorTable, err error) {
	_, message, spec := table.Lookup(err)
	body := map[string]string{
		"__type":  fmt.Sprintf("%s#%s", prefix, spec.Code),
		"message": message,
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(spec.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON unmarshals the request body into dst, the way every AWS JSON
// action handler does before calling into its engine.
func DecodeJSON(r *http.Request, dst any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
