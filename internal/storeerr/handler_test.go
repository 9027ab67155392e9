package storeerr

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/deppfellow/guitars-serverless/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "dynamodb throughput exceeded",
			err:  pkgerrors.Wrap(&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}, "get Guitars 1"),
			want: Unavailable,
		},
		{
			name: "generic throttling code",
			err:  &smithy.GenericAPIError{Code: "ThrottlingException"},
			want: Unavailable,
		},
		{
			name: "dynamodb validation",
			err:  &smithy.GenericAPIError{Code: "ValidationException", Message: "key element does not match the schema"},
			want: Rejected,
		},
		{
			name: "dynamodb missing table",
			err:  &types.ResourceNotFoundException{Message: aws.String("table not found")},
			want: Missing,
		},
		{
			name: "postgres connection failure",
			err:  &pgconn.PgError{Code: "08006"},
			want: Unavailable,
		},
		{
			name: "postgres not null",
			err:  &pgconn.PgError{Code: "23502"},
			want: Rejected,
		},
		{
			name: "postgres undefined table",
			err:  &pgconn.PgError{Code: "42P01"},
			want: Missing,
		},
		{
			name: "deadline",
			err:  pkgerrors.Wrap(context.DeadlineExceeded, "scan Guitars"),
			want: Unavailable,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: Other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("unavailable becomes 503 with entity code", func(t *testing.T) {
		err := HandleError(&types.ProvisionedThroughputExceededException{}, "Guitars")

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
		assert.Equal(t, "GUITAR_UNAVAILABLE", httpErr.Code)
	})

	t.Run("rejected becomes 400", func(t *testing.T) {
		err := HandleError(&smithy.GenericAPIError{Code: "ValidationException"}, "guitars")

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "GUITAR_REJECTED", httpErr.Code)
		assert.Equal(t, "The guitar was rejected by the store", httpErr.Message)
	})

	t.Run("missing table and unknown faults are generic 500s", func(t *testing.T) {
		for _, err := range []error{&types.ResourceNotFoundException{}, errors.New("boom")} {
			var httpErr *errs.HTTPError
			require.True(t, errors.As(HandleError(err, "Guitars"), &httpErr))
			assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
			assert.Equal(t, "Internal Server Error", httpErr.Message)
		}
	})

	t.Run("http errors pass through", func(t *testing.T) {
		notFound := errs.NewNotFoundError("Guitar 1 not found", true, nil)
		assert.Same(t, notFound, HandleError(notFound, "Guitars"))
	})
}

func TestGetEntityName(t *testing.T) {
	assert.Equal(t, "Guitar", getEntityName("Guitars"))
	assert.Equal(t, "Guitar", getEntityName("guitars"))
	assert.Equal(t, "Bass Guitar", getEntityName("bass_guitars"))
	assert.Equal(t, "Record", getEntityName(""))
}
