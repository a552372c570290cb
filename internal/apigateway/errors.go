package apigateway

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to API Gateway's error
// codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "NotFoundException", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:        {Code: "ConflictException", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:      {Code: "BadRequestException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "UnsupportedMediaTypeException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ConflictException", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "ServiceUnavailableException", HTTPStatus: http.StatusInternalServerError},
}
