// Package errors defines the error taxonomy shared by the indexer, the query
// engine and the HTTP layers. Outcomes are plain values: callers branch with
// errors.Is on the sentinels below instead of recovering from panics.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIngest is the parent of every per-document failure during a build.
	// Such failures are logged and the document is skipped.
	ErrIngest            = errors.New("ingest error")
	ErrDuplicateURL      = fmt.Errorf("%w: duplicate url", ErrIngest)
	ErrMalformedDocument = fmt.Errorf("%w: malformed document", ErrIngest)

	ErrPartitionMissing    = errors.New("partition missing")
	ErrPartitionCorrupt    = errors.New("partition corrupt")
	ErrCorrectionExhausted = errors.New("no correction candidate")
	ErrLanguageAmbiguous   = errors.New("language detection ambiguous")

	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUnavailable  = errors.New("dependency unavailable")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status the serving layer reports.
// A missing partition is not an error for callers and never reaches here.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIngest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
