package handler

import (
	"fmt"

	"github.com/deppfellow/guitars-serverless/internal/errs"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/deppfellow/guitars-serverless/internal/service"
	"github.com/labstack/echo/v4"
)

// ListGuitarsRequest takes no input.
type ListGuitarsRequest struct{}

func (r *ListGuitarsRequest) Validate() error { return nil }

// GuitarIDRequest carries the :id path param. Binding rejects anything
// that is not an integer.
type GuitarIDRequest struct {
	ID int `param:"id"`
}

func (r *GuitarIDRequest) Validate() error { return nil }

// CreateGuitarRequest is the full guitar in the body, id included.
type CreateGuitarRequest struct {
	model.Guitar
}

func (r *CreateGuitarRequest) Validate() error { return nil }

// UpdateGuitarRequest is the full guitar in the body. The :id path param
// wins over any id in the body.
type UpdateGuitarRequest struct {
	PathID int `param:"id" json:"-"`
	model.Guitar
}

func (r *UpdateGuitarRequest) Validate() error { return nil }

// DeleteGuitarResponse wraps the confirmation text.
type DeleteGuitarResponse struct {
	Message string `json:"message"`
}

type GuitarHandler struct {
	Handler
	guitars *service.GuitarService
}

func NewGuitarHandler(s *server.Server, guitars *service.GuitarService) *GuitarHandler {
	return &GuitarHandler{
		Handler: NewHandler(s),
		guitars: guitars,
	}
}

func (h *GuitarHandler) ListGuitars(c echo.Context, _ *ListGuitarsRequest) ([]model.Guitar, error) {
	return h.guitars.List(c.Request().Context())
}

func (h *GuitarHandler) GetGuitar(c echo.Context, req *GuitarIDRequest) (model.Guitar, error) {
	guitar, found, err := h.guitars.GetByID(c.Request().Context(), req.ID)
	if err != nil {
		return model.Guitar{}, err
	}
	if !found {
		code := "GUITAR_NOT_FOUND"
		return model.Guitar{}, errs.NewNotFoundError(fmt.Sprintf("Guitar %d not found", req.ID), true, &code)
	}
	return guitar, nil
}

func (h *GuitarHandler) CreateGuitar(c echo.Context, req *CreateGuitarRequest) (model.Guitar, error) {
	return h.guitars.Create(c.Request().Context(), req.Guitar)
}

func (h *GuitarHandler) UpdateGuitar(c echo.Context, req *UpdateGuitarRequest) (model.Guitar, error) {
	guitar := req.Guitar
	guitar.ID = req.PathID

	return h.guitars.Update(c.Request().Context(), guitar)
}

func (h *GuitarHandler) DeleteGuitar(c echo.Context, req *GuitarIDRequest) (DeleteGuitarResponse, error) {
	msg, err := h.guitars.Delete(c.Request().Context(), req.ID)
	if err != nil {
		return DeleteGuitarResponse{}, err
	}
	return DeleteGuitarResponse{Message: msg}, nil
}
