package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/labstack/echo/v4"
)

// OpenAPIUIPath is the docs page served at /docs.
const OpenAPIUIPath = "static/openapi.html"

// OpenAPIHandler serves the API docs UI, which loads static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the docs page uncached.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile(OpenAPIUIPath)

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
