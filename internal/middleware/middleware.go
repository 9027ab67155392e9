// Package middleware stores the Echo middleware used by the HTTP runner.
//
// These intercept requests to handle cross-cutting concerns such as
// request ids, request-scoped logging, CORS, New Relic tracing, panic
// recovery and the final error funnel.
package middleware
