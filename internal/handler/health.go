package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/guitars-serverless/internal/middleware"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthCheckTimeout bounds the store ping.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler reports whether the store behind the runner is reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth pings the store. 200 when it answers, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), HealthCheckTimeout)
	defer cancel()

	driver := h.server.Config.Store.Driver
	storeStart := time.Now()

	if err := h.server.Table.Ping(ctx); err != nil {
		checks["store"] = map[string]interface{}{
			"status":        "unhealthy",
			"driver":        driver,
			"table":         h.server.Config.Store.Table,
			"response_time": time.Since(storeStart).String(),
			"error":         err.Error(),
		}
		response["status"] = "unhealthy"

		logger.Error().
			Err(err).
			Str("driver", driver).
			Dur("response_time", time.Since(storeStart)).
			Msg("store health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type":       "store",
				"driver":           driver,
				"operation":        "health_check",
				"error_type":       "store_unhealthy",
				"response_time_ms": time.Since(storeStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	checks["store"] = map[string]interface{}{
		"status":        "healthy",
		"driver":        driver,
		"table":         h.server.Config.Store.Table,
		"response_time": time.Since(storeStart).String(),
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}
