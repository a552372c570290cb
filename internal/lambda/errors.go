package lambda

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to Lambda's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:        {Code: "ResourceConflictException", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:      {Code: "InvalidParameterValueException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidRequestContentException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceConflictException", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:            {Code: "TooManyRequestsException", HTTPStatus: http.StatusTooManyRequests},
	apperr.Internal:             {Code: "ServiceException", HTTPStatus: http.StatusInternalServerError},
}
