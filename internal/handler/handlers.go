package handler

import (
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/deppfellow/guitars-serverless/internal/service"
)

// Handlers groups all HTTP handlers.
type Handlers struct {
	Guitar  *GuitarHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Guitar:  NewGuitarHandler(s, services.Guitars),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
