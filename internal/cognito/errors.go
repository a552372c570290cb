package cognito

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to Cognito's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ResourceNotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "UsernameExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidParameterException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "NotAuthorizedException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "UsernameExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalErrorException", HTTPStatus: http.StatusInternalServerError},
}

func errUserNotFound(username string) error {
	return apperr.Newf(apperr.NotFound, "user %s does not exist", username)
}
