package dynamodb

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to DynamoDB's concrete
// error codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ResourceInUseException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "ValidationException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "UnknownOperationException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceInUseException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "ProvisionedThroughputExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalServerError", HTTPStatus: http.StatusInternalServerError},
}
