package function

import (
	"context"
	"strings"

	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/pkg/errors"
)

// Invocation is the envelope the dispatch handler accepts:
//
//	{"operation": "get", "id": 1}
//	{"operation": "create", "guitar": {"id": 1, "brand": "Fender"}}
//
// Fields an operation does not use are ignored. Missing ones are passed
// through as zero values.
type Invocation struct {
	Operation string       `json:"operation"`
	ID        int          `json:"id"`
	Guitar    model.Guitar `json:"guitar"`
}

// Invoke routes inv to the entry point named by inv.Operation. Names are
// case-insensitive; the method names GetSingle, Post and Put work too.
// "get" always means a single guitar, never the list.
func (f *Function) Invoke(ctx context.Context, inv Invocation) (any, error) {
	switch strings.ToLower(inv.Operation) {
	case OperationList:
		return f.Get(ctx)
	case OperationGet, "getsingle":
		return f.GetSingle(ctx, inv.ID)
	case OperationCreate, "post":
		return f.Post(ctx, inv.Guitar)
	case OperationUpdate, "put":
		return f.Put(ctx, inv.Guitar)
	case OperationDelete:
		return f.Delete(ctx, inv.ID)
	default:
		return nil, errors.Wrapf(ErrUnknownOperation, "operation %q", inv.Operation)
	}
}
