package eventbridge

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to EventBridge's error
// codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ResourceAlreadyExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidParameterValueException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "IllegalStatusException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceAlreadyExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalException", HTTPStatus: http.StatusInternalServerError},
}
