package kinesis

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to Kinesis's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ResourceInUseException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidArgumentException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "UnknownOperationException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceInUseException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalFailure", HTTPStatus: http.StatusInternalServerError},
}
