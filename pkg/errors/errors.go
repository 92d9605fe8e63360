// Package errors provides the error taxonomy understood by the reporting
// middleware. Every error that leaves a request handler falls into exactly
// one of three kinds, resolved once by [KindOf]:
//
//   - Signals ([*Status]): deliberate short-circuit responses such as
//     redirects. They are not failures and are never reported.
//   - HTTP errors (anything implementing [HTTPError], including [*Error]):
//     failures that carry an explicit status code and a structured map
//     representation used as the report payload.
//   - Unclassified errors: everything else. These are reported as fatal
//     and translated into [UnknownError] before they reach the response
//     renderer.
//
// # Error Codes
//
// [*Error] carries a machine-readable code (e.g. "NF_001") following the
// pattern CATEGORY_XXX. The category determines the HTTP status unless
// [Error.Status] overrides it.
//
// # Usage
//
//	err := errors.NotFound("widget not found").WithDetail("widget_id", id)
//
//	if e, ok := errors.AsError(err); ok {
//	    logger.Error("operation failed",
//	        "code", e.Code,
//	        "status", e.HTTPStatus(),
//	    )
//	}
package errors
