package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/guitars-serverless/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	ID      int    `json:"id" validate:"min=1"`
	Brand   string `json:"brand" validate:"required"`
	Strings int    `json:"strings" validate:"oneof=4 6 7 12"`
}

func (t *tagged) Validate() error {
	return validator.New().Struct(t)
}

type custom struct{}

func (c *custom) Validate() error {
	return CustomValidationErrors{{Field: "colour", Message: "is not a colour"}}
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate_TagErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{"id":0,"strings":5}`), &tagged{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "id", Error: "must be at least 1"},
		{Field: "brand", Error: "is required"},
		{Field: "strings", Error: "must be one of: 4 6 7 12"},
	}, httpErr.Errors)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{}`), &custom{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, []errs.FieldError{{Field: "colour", Error: "is not a colour"}}, httpErr.Errors)
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(`{"id":`), &tagged{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Nil(t, httpErr.Errors)
}

func TestBindAndValidate_OK(t *testing.T) {
	payload := &tagged{}
	require.NoError(t, BindAndValidate(newContext(`{"id":1,"brand":"Fender","strings":6}`), payload))
	assert.Equal(t, "Fender", payload.Brand)
}
