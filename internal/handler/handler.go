// Package handler is the HTTP entry point for the guitar operations.
//
// It binds requests through the validation package, calls the service
// layer and writes JSON. Errors are returned to the global error handler,
// which renders them.
package handler
