package ses

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to SES's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "NotFoundException", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:        {Code: "AlreadyExistsException", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:      {Code: "InvalidParameterValue", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "UnsupportedOperation", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "AlreadyExistsException", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "ServiceError", HTTPStatus: http.StatusInternalServerError},
}
