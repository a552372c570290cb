package sns

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to SNS's concrete error
// codes, rendered through the AWS Query <ErrorResponse> shape.
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "NotFound", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:        {Code: "AlreadyExists", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:      {Code: "InvalidParameter", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidAction", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "Conflict", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:            {Code: "TooManyEntriesInBatchRequest", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalFailure", HTTPStatus: http.StatusInternalServerError},
}
