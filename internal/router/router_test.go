package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/deppfellow/guitars-serverless/internal/errs"
	"github.com/deppfellow/guitars-serverless/internal/handler"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/repository"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/deppfellow/guitars-serverless/internal/service"
	"github.com/deppfellow/guitars-serverless/internal/store"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, table store.Table[model.Guitar]) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	srv := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Store: config.StoreConfig{
				Driver:       config.DriverMemory,
				Table:        "Guitars",
				KeyAttribute: "id",
			},
			Server:        config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
		Table:  table,
	}

	services := service.NewServices(repository.NewRepositories(srv))
	return NewRouter(srv, handler.NewHandlers(srv, services))
}

func do(r *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGuitarRoutes_Lifecycle(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryTable[model.Guitar]())

	rec := do(r, http.MethodGet, "/api/v1/guitars", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/v1/guitars", `{"id":1,"brand":"Fender","model":"Strat"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"brand":"Fender","model":"Strat"}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/guitars/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"brand":"Fender","model":"Strat"}`, rec.Body.String())

	rec = do(r, http.MethodPut, "/api/v1/guitars/1", `{"id":99,"brand":"Fender","model":"Telecaster","strings":6}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"brand":"Fender","model":"Telecaster","strings":6}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/guitars", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"brand":"Fender","model":"Telecaster","strings":6}]`, rec.Body.String())

	rec = do(r, http.MethodDelete, "/api/v1/guitars/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Guitar 1 Deleted"}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/guitars/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	notFound := decodeError(t, rec)
	assert.Equal(t, "GUITAR_NOT_FOUND", notFound.Code)
	assert.Equal(t, "Guitar 1 not found", notFound.Message)

	rec = do(r, http.MethodDelete, "/api/v1/guitars/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuitarRoutes_TypeShape(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryTable[model.Guitar]())

	t.Run("non-integer id", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/v1/guitars/strat", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeError(t, rec)
		assert.Equal(t, []errs.FieldError{{Field: "id", Error: "must be an integer"}}, body.Errors)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/v1/guitars", `{"id":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong field type", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/v1/guitars", `{"id":"one"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/guitars", strings.NewReader("id=1"))
		req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestRoutes_UnknownRoute(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryTable[model.Guitar]())

	rec := do(r, http.MethodGet, "/api/v1/basses", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeError(t, rec).Message)
}

func TestRoutes_RequestID(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryTable[model.Guitar]())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/guitars", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = do(r, http.MethodGet, "/api/v1/guitars", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

// brokenTable fails every call with err.
type brokenTable struct {
	err error
}

func (b brokenTable) Scan(context.Context) ([]model.Guitar, error) { return nil, b.err }
func (b brokenTable) Get(context.Context, int) (model.Guitar, bool, error) {
	return model.Guitar{}, false, b.err
}
func (b brokenTable) Put(context.Context, model.Guitar) error { return b.err }
func (b brokenTable) Delete(context.Context, int) error { return b.err }
func (b brokenTable) Ping(context.Context) error { return b.err }

func TestRoutes_StoreFaults(t *testing.T) {
	throttled := pkgerrors.Wrap(
		&types.ProvisionedThroughputExceededException{Message: aws.String("rate exceeded")},
		"table:Guitars: scan",
	)
	r := newTestRouter(t, brokenTable{err: throttled})

	rec := do(r, http.MethodGet, "/api/v1/guitars", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "GUITAR_UNAVAILABLE", decodeError(t, rec).Code)

	rec = do(r, http.MethodPost, "/api/v1/guitars", `{"id":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(r, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "unhealthy", health["status"])
}

func TestRoutes_UnknownFaultIsOpaque(t *testing.T) {
	r := newTestRouter(t, brokenTable{err: pkgerrors.New("decode Guitars 1: unexpected token")})

	rec := do(r, http.MethodGet, "/api/v1/guitars/1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.NotContains(t, rec.Body.String(), "unexpected token")
}

func TestRoutes_Status(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryTable[model.Guitar]())

	rec := do(r, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["environment"])

	checks := health["checks"].(map[string]any)
	storeCheck := checks["store"].(map[string]any)
	assert.Equal(t, "memory", storeCheck["driver"])
	assert.Equal(t, "Guitars", storeCheck["table"])
}
