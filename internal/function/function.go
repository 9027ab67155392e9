// Package function is the Lambda invocation surface.
//
// A Function is built once per cold start and its methods are the
// handlers the runtime calls: Get, GetSingle, Post, Put and Delete.
// Handler picks one of them by name, or the Invoke dispatcher that
// routes an {"operation": ...} envelope to any of them.
//
// The invocation context is used for log correlation only. Store faults
// are returned to the runtime unchanged.
package function

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/service"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/guitars-serverless/internal/logger"
)

// Operation names accepted by Handler and by Invocation.Operation.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationDispatch = "dispatch"
)

// ErrUnknownOperation is returned for an operation name nothing handles.
var ErrUnknownOperation = errors.New("unknown operation")

// Function holds the service shared by every invocation in the process.
type Function struct {
	guitars *service.GuitarService
	logger  *zerolog.Logger
}

func New(services *service.Services, logger *zerolog.Logger) *Function {
	return &Function{
		guitars: services.Guitars,
		logger:  logger,
	}
}

// Get lists every guitar.
func (f *Function) Get(ctx context.Context) ([]model.Guitar, error) {
	ctx, done := f.begin(ctx, OperationList)

	guitars, err := f.guitars.List(ctx)
	done(err)

	return guitars, err
}

// GetSingle returns the guitar with id, or nil when there is none. The
// runtime serialises nil as JSON null.
func (f *Function) GetSingle(ctx context.Context, id int) (*model.Guitar, error) {
	ctx, done := f.begin(ctx, OperationGet)

	guitar, found, err := f.guitars.GetByID(ctx, id)
	done(err)

	if err != nil || !found {
		return nil, err
	}
	return &guitar, nil
}

// Post stores g, replacing any guitar with the same id.
func (f *Function) Post(ctx context.Context, g model.Guitar) (model.Guitar, error) {
	ctx, done := f.begin(ctx, OperationCreate)

	created, err := f.guitars.Create(ctx, g)
	done(err)

	return created, err
}

// Put stores g the same way Post does.
func (f *Function) Put(ctx context.Context, g model.Guitar) (model.Guitar, error) {
	ctx, done := f.begin(ctx, OperationUpdate)

	updated, err := f.guitars.Update(ctx, g)
	done(err)

	return updated, err
}

// Delete removes the guitar with id and returns a confirmation message.
func (f *Function) Delete(ctx context.Context, id int) (string, error) {
	ctx, done := f.begin(ctx, OperationDelete)

	msg, err := f.guitars.Delete(ctx, id)
	done(err)

	return msg, err
}

// Handler returns the handler function for name, ready for lambda.Start.
func (f *Function) Handler(name string) (any, error) {
	switch strings.ToLower(name) {
	case OperationList:
		return f.Get, nil
	case OperationGet:
		return f.GetSingle, nil
	case OperationCreate:
		return f.Post, nil
	case OperationUpdate:
		return f.Put, nil
	case OperationDelete:
		return f.Delete, nil
	case OperationDispatch:
		return f.Invoke, nil
	default:
		return nil, errors.Wrapf(ErrUnknownOperation, "handler %q", name)
	}
}

// begin scopes a logger to the invocation and returns the func that
// reports the outcome.
func (f *Function) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	logger := f.logger.With().Str("operation", operation)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.Str("request_id", lc.AwsRequestID)
	}
	if lambdacontext.FunctionName != "" {
		logger = logger.Str("function", lambdacontext.FunctionName)
	}

	txn := newrelic.FromContext(ctx)
	scoped := loggerPkg.WithTraceContext(logger.Logger(), txn)
	ctx = scoped.WithContext(ctx)

	return ctx, func(err error) {
		if err == nil {
			return
		}

		scoped.Error().Stack().Err(err).Msg("operation failed")
		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
	}
}
