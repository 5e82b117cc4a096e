// Package errs defines the error shapes the API returns.
//
// Every error that reaches a client is an *HTTPError: a stable machine code,
// a message, the HTTP status and optional field-level errors, serialized as
// JSON by the global error handler.
package errs
