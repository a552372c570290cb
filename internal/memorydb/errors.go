package memorydb

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to MemoryDB's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "ClusterNotFoundFault", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "ClusterAlreadyExistsFault", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidParameterValueException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "InvalidParameterCombinationException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "ClusterAlreadyExistsFault", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "ClusterQuotaForCustomerExceededFault", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "ServiceLinkedRoleNotFoundFault", HTTPStatus: http.StatusInternalServerError},
}
