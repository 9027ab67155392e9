// Package router builds the Echo instance for the HTTP runner.
//
// It registers the middlewares and maps the API route groups to their
// handlers.
package router

import (
	"github.com/deppfellow/guitars-serverless/internal/handler"
	"github.com/deppfellow/guitars-serverless/internal/middleware"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter wires middleware and routes. Order matters: the request id
// must exist before the context enhancer builds the request logger, and
// the New Relic transaction before tracing attributes are added.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerGuitarRoutes(v1, h)

	return router
}
