package cloudwatchlogs

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to CloudWatch Logs' error
// codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ResourceAlreadyExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidParameterException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidOperationException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ResourceAlreadyExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "ServiceUnavailableException", HTTPStatus: http.StatusInternalServerError},
}
