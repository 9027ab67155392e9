package repository

import (
	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/deppfellow/guitars-serverless/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Guitars *GuitarRepository
}

// NewRepositories builds the repositories over the server's table.
func NewRepositories(s *server.Server) *Repositories {
	guitars := NewGuitarRepository(
		s.Table,
		s.Config.Store.Table,
		s.Logger,
		s.Config.Observability.Logging.SlowOperationThreshold,
	)

	// Redis and postgres clients carry their own New Relic hooks.
	if s.Config.Store.Driver == config.DriverDynamoDB {
		guitars.WithDatastoreSegments(newrelic.DatastoreDynamoDB)
	}

	return &Repositories{Guitars: guitars}
}
