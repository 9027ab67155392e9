// Command function is the Lambda binary.
//
// The store client, repository and service are built once here, at cold
// start, and reused by every invocation the runtime sends to this
// process. function.handler selects which entry point is served.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/deppfellow/guitars-serverless/internal/function"
	"github.com/deppfellow/guitars-serverless/internal/logger"
	"github.com/deppfellow/guitars-serverless/internal/repository"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/deppfellow/guitars-serverless/internal/service"
	"github.com/newrelic/go-agent/v3/integrations/nrlambda"
)

func main() {
	cfg := config.LoadConfig()

	loggerService := logger.NewLoggerService(cfg.Observability, true)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(context.Background(), cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(repos)
	fn := function.New(services, &log)

	handler, err := fn.Handler(cfg.Function.Handler)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to select handler")
	}

	log.Info().
		Str("handler", cfg.Function.Handler).
		Str("driver", cfg.Store.Driver).
		Msg("starting function")

	if app := loggerService.GetApplication(); app != nil {
		nrlambda.Start(handler, app)
		return
	}
	lambda.Start(handler)
}
