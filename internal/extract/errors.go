package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
)

// ErrorCategory buckets extraction failures for the caller. The dispatcher
// records the category on the failed record; it never triggers an automatic
// retry.
type ErrorCategory string

const (
	ErrorUnauthorized    ErrorCategory = "unauthorized"
	ErrorRateLimited     ErrorCategory = "rate_limited"
	ErrorPayloadTooLarge ErrorCategory = "payload_too_large"
	ErrorTimeout         ErrorCategory = "timeout"
	ErrorOther           ErrorCategory = "other"
)

// ServiceError is an extraction-service failure with its category attached.
type ServiceError struct {
	Category   ErrorCategory
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extraction service error (%s, status %d): %s", e.Category, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("extraction service error (%s): %s", e.Category, e.Message)
}

// Categorize maps an arbitrary extraction error to its category. Unknown
// errors fall into the catch-all bucket.
func Categorize(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	return ErrorOther
}

// mapAPIError converts an OpenAI SDK error into a ServiceError.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		category := ErrorOther
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			category = ErrorUnauthorized
		case http.StatusTooManyRequests:
			category = ErrorRateLimited
		case http.StatusRequestEntityTooLarge:
			category = ErrorPayloadTooLarge
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			category = ErrorTimeout
		}
		return &ServiceError{
			Category:   category,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Category: ErrorTimeout, Message: err.Error()}
	}
	return err
}
