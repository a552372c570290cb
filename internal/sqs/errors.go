package sqs

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to SQS's concrete
// AWS.SimpleQueueService.* error codes (spec.md §7).
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:            {Code: "AWS.SimpleQueueService.NonExistentQueue", HTTPStatus: http.StatusBadRequest},
	apperr.AlreadyExists:       {Code: "QueueAlreadyExists", HTTPStatus: http.StatusBadRequest},
	apperr.InvalidArgument:     {Code: "InvalidParameterValue", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "AWS.SimpleQueueService.UnsupportedOperation", HTTPStatus: http.StatusBadRequest},
	apperr.Conflict:            {Code: "AWS.SimpleQueueService.PurgeQueueInProgress", HTTPStatus: http.StatusBadRequest},
	apperr.OverLimit:           {Code: "OverLimit", HTTPStatus: http.StatusBadRequest},
	apperr.ReceiptHandleInvalid: {Code: "ReceiptHandleIsInvalid", HTTPStatus: http.StatusBadRequest},
	apperr.MessageNotInflight:  {Code: "AWS.SimpleQueueService.MessageNotInflight", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:            {Code: "InternalFailure", HTTPStatus: http.StatusInternalServerError},
}
