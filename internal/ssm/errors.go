package ssm

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to SSM's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ParameterNotFound", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ParameterAlreadyExists", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "ValidationException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidAction", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ParameterAlreadyExists", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "TooManyUpdates", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalServerError", HTTPStatus: http.StatusInternalServerError},
}
