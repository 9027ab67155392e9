// Command api runs the guitar operations behind the Echo HTTP runner, for
// local development and container deployments.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/deppfellow/guitars-serverless/internal/handler"
	"github.com/deppfellow/guitars-serverless/internal/logger"
	"github.com/deppfellow/guitars-serverless/internal/repository"
	"github.com/deppfellow/guitars-serverless/internal/router"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/deppfellow/guitars-serverless/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.LoadConfig()

	loggerService := logger.NewLoggerService(cfg.Observability, false)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
