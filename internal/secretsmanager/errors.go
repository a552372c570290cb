package secretsmanager

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to Secrets Manager's error
// codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ResourceExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidParameterException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidRequestException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalServiceError", HTTPStatus: http.StatusInternalServerError},
}
