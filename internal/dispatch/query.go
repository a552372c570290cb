package dispatch

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/nimbusemu/nimbus/internal/identity"
)

// QueryAction reads the Action form field of an AWS Query request (SNS).
// The body is application/x-www-form-urlencoded; callers must have
// already called r.ParseForm().
func QueryAction(r *http.Request) string {
	return r.FormValue("Action")
}

// QueryErrorResponse is the XML shape AWS Query services use for errors:
// <ErrorResponse><Error>...</Error><RequestId/></ErrorResponse>.
type QueryErrorResponse struct {
	XMLName   xml.Name   `xml:"ErrorResponse"`
	Error     QueryError `xml:"Error"`
	RequestID string     `xml:"RequestId"`
}

type QueryError struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// WriteQueryError renders an AWS Query protocol error (SNS).
func WriteQueryError(w http.ResponseWriter, table ErrorTable, err error) {
	_, message, spec := table.Lookup(err)
	resp := QueryErrorResponse{
		Error: QueryError{
			Type:    "Sender",
			Code:    spec.Code,
			Message: message,
		},
		RequestID: identity.NewID(),
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(spec.HTTPStatus)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(resp)
}

// WriteQueryResult wraps a pre-marshalled <ActionResult> fragment in the
// <ActionResponse>/<ResponseMetadata> envelope every AWS Query action
// uses. Callers marshal their own result struct (its XMLName should be
// "<Action>Result") via xml.Marshal and pass the bytes here, since the
// result shape is different for every action and encoding/xml cannot
// marshal a bare interface{} field with the right element name.
func WriteQueryResult(w http.ResponseWriter, action, xmlns string, resultXML []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, xml.Header)
	fmt.Fprintf(w, "<%sResponse xmlns=%q>", action, xmlns)
	w.Write(resultXML)
	fmt.Fprintf(w, "<ResponseMetadata><RequestId>%s</RequestId></ResponseMetadata>", identity.NewID())
	fmt.Fprintf(w, "</%sResponse>", action)
}

// MarshalResult is a small convenience wrapper around xml.Marshal for
// result structs whose XMLName is already set to "<Action>Result".
func MarshalResult(v any) []byte {
	b, _ := xml.Marshal(v)
	return b
}
