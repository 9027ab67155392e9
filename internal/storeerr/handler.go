// Package storeerr turns store driver faults into HTTP errors.
//
// It is only used at the HTTP boundary, after the original fault has been
// logged. The service layer and the Lambda entry points never call it:
// they hand the driver error back unchanged.
package storeerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/deppfellow/guitars-serverless/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the broad class of a store fault.
type Kind int

const (
	// Other is anything not recognised below; rendered as a plain 500.
	Other Kind = iota
	// Unavailable covers throttling, unreachable endpoints and timeouts.
	Unavailable
	// Rejected means the store refused the request shape.
	Rejected
	// Missing means the table itself does not exist.
	Missing
)

// DynamoDB error codes that mean "try again later".
var unavailableCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
}

// Classify reports the Kind of err by walking its chain.
func Classify(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); {
		case unavailableCodes[code]:
			return Unavailable
		case code == "ValidationException":
			return Rejected
		case code == "ResourceNotFoundException":
			return Missing
		default:
			return Other
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		// 08: connection exception, 53: insufficient resources, 57: operator intervention
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57"):
			return Unavailable
		// 22: data exception, 23: integrity constraint violation
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return Rejected
		case pgErr.Code == "42P01":
			return Missing
		default:
			return Other
		}
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr), errors.As(err, &netErr):
		return Unavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, redis.ErrClosed):
		return Unavailable
	}

	return Other
}

// HandleError converts a store fault into an *errs.HTTPError.
//
// table names the entity in messages and codes ("Guitars" becomes
// "Guitar" and GUITAR_*). Errors that already are *errs.HTTPError are
// returned unchanged.
func HandleError(err error, table string) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	entity := getEntityName(table)

	switch Classify(err) {
	case Unavailable:
		code := generateErrorCode(table, "UNAVAILABLE")
		return errs.NewServiceUnavailableError(
			fmt.Sprintf("The %s store is busy or unreachable, try again later", strings.ToLower(entity)), &code)

	case Rejected:
		code := generateErrorCode(table, "REJECTED")
		return errs.NewBadRequestError(
			fmt.Sprintf("The %s was rejected by the store", strings.ToLower(entity)), true, &code, nil)

	default:
		// Missing tables and unknown faults do not leak details.
		return errs.NewInternalServerError()
	}
}

// generateErrorCode builds <ENTITY>_<ACTION>, e.g. GUITAR_UNAVAILABLE.
func generateErrorCode(table, action string) string {
	domain := strings.ToUpper(strings.ReplaceAll(getEntityName(table), " ", "_"))
	return fmt.Sprintf("%s_%s", domain, action)
}

// getEntityName singularises a table name the naive way.
func getEntityName(table string) string {
	if table == "" {
		return "Record"
	}

	entity := table
	if strings.HasSuffix(strings.ToLower(entity), "s") && len(entity) > 1 {
		entity = entity[:len(entity)-1]
	}
	return humanizeText(entity)
}

// humanizeText turns snake_case into Title Case.
func humanizeText(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
