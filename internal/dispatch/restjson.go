package dispatch

import (
	"encoding/json"
	"net/http"
)

// WriteRestJSONError renders a plain REST+JSON error (Lambda, API
// Gateway, SES v2): x-amzn-ErrorType header plus a JSON body with a
// Message field, per spec.md §4.1/§6.4.
func WriteRestJSONError(w http.ResponseWriter, table ErrorTable, err error) {
	_, message, spec := table.Lookup(err)
	w.Header().Set("x-amzn-ErrorType", spec.Code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(spec.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"Message": message})
}
