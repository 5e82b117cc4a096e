// Package handler is the HTTP entry point after the router.
//
// Handlers bind and validate requests through the validation package, call
// the service layer and write the response; errors are left to the global
// error handler.
package handler
