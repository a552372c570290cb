package stepfunctions

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to Step Functions' error
// codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "StateMachineDoesNotExist", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ExecutionAlreadyExists", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidArn", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidAction", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ExecutionAlreadyExists", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "StateMachineLimitExceeded", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "InternalFailure", HTTPStatus: http.StatusInternalServerError},
}
