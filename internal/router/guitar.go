package router

import (
	"net/http"

	"github.com/deppfellow/guitars-serverless/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerGuitarRoutes(g *echo.Group, h *handler.Handlers) {
	guitars := g.Group("/guitars")

	guitars.GET("", handler.Handle(h.Guitar.Handler, h.Guitar.ListGuitars, http.StatusOK))
	guitars.GET("/:id", handler.Handle(h.Guitar.Handler, h.Guitar.GetGuitar, http.StatusOK))
	guitars.POST("", handler.Handle(h.Guitar.Handler, h.Guitar.CreateGuitar, http.StatusCreated))
	guitars.PUT("/:id", handler.Handle(h.Guitar.Handler, h.Guitar.UpdateGuitar, http.StatusOK))
	guitars.DELETE("/:id", handler.Handle(h.Guitar.Handler, h.Guitar.DeleteGuitar, http.StatusOK))
}
