package kms

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to KMS's error codes
// (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:             {Code: "NotFoundException", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:        {Code: "AlreadyExistsException", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:      {Code: "InvalidCiphertextException", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "UnsupportedOperationException", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:             {Code: "KMSInvalidStateException", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:            {Code: "LimitExceededException", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:             {Code: "KMSInternalException", HTTPStatus: http.StatusInternalServerError},
}
