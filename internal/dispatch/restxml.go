package dispatch

import (
	"encoding/xml"
	"net/http"

	"github.com/nimbusemu/nimbus/internal/identity"
)

// RestXMLError is S3's bare error shape: <Error><Code/><Message/></Error>,
// with no ErrorResponse/ResponseMetadata wrapper (spec.md §4.1).
type RestXMLError struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
	// Resource/RequestId are included where the real service does, but are
	// not required for client correctness; kept for shape fidelity.
	Resource  string `xml:"Resource,omitempty"`
	RequestID string `xml:"RequestId"`
}

// WriteRestXMLError renders an S3-style bare XML error.
func WriteRestXMLError(w http.ResponseWriter, table ErrorTable, resource string, err error) {
	_, message, spec := table.Lookup(err)
	body := RestXMLError{
		Code:      spec.Code,
		Message:   message,
		Resource:  resource,
		RequestID: identity.NewID(),
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(spec.HTTPStatus)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(body)
}

// WriteXML writes v as an application/xml body with the given status.
func WriteXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(v)
}
