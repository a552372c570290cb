package s3

import (
	"net/http"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
)

// ErrorTable maps the shared apperr.Kind enum to S3's concrete error
// codes (spec.md §7), rendered through the bare <Error> XML shape.
var ErrorTable = dispatch.ErrorTable{
	apperr.NotFound:            {Code: "NoSuchKey", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:       {Code: "BucketAlreadyExists", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:     {Code: "InvalidArgument", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "NotImplemented", HTTPStatus: http.StatusNotImplemented},
	apperr.Conflict:            {Code: "BucketNotEmpty", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:           {Code: "EntityTooLarge", HTTPStatus: http.StatusBadRequest},
	apperr.ReceiptHandleInvalid: {Code: "InvalidArgument", HTTPStatus: http.StatusBadRequest},
	apperr.MessageNotInflight:  {Code: "InvalidArgument", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:            {Code: "InternalError", HTTPStatus: http.StatusInternalServerError},
}

// bucketErrorTable renders NotFound as NoSuchBucket instead of NoSuchKey
// (the same apperr.Kind is used for both; the dispatch layer picks this
// table for bucket-level operations).
var bucketErrorTable = dispatch.ErrorTable{
	apperr.NotFound:            {Code: "NoSuchBucket", HTTPStatus: http.StatusNotFound},
	apperr.AlreadyExists:       {Code: "BucketAlreadyExists", HTTPStatus: http.StatusConflict},
	apperr.InvalidArgument:     {Code: "InvalidArgument", HTTPStatus: http.StatusBadRequest},
	apperr.UnsupportedOperation: {Code: "NotImplemented", HTTPStatus: http.StatusNotImplemented},
	apperr.Conflict:            {Code: "BucketNotEmpty", HTTPStatus: http.StatusConflict},
	apperr.OverLimit:           {Code: "EntityTooLarge", HTTPStatus: http.StatusBadRequest},
	apperr.Internal:            {Code: "InternalError", HTTPStatus: http.StatusInternalServerError},
}
