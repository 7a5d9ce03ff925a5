package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType categorizes GitHub API failures.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// GitHubError is a structured error from a GitHub operation.
type GitHubError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	Resource  string    `json:"resource,omitempty"`
	Retryable bool      `json:"retryable"`
}

// Error implements the error interface.
func (e *GitHubError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether retrying the operation may succeed.
func (e *GitHubError) IsRetryable() bool {
	return e.Retryable
}

// WrapGitHubError converts an arbitrary error from a GitHub call into a
// structured GitHubError, classifying it by HTTP status or error shape.
func WrapGitHubError(err error, resource string) *GitHubError {
	if err == nil {
		return nil
	}

	// errors.As, not a direct assertion: the retry loop wraps its final
	// failure with fmt.Errorf, and the classification must survive that.
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return classifyErrorResponse(respErr, resource)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &GitHubError{
			Type:      ErrorTypeRateLimit,
			Message:   fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &GitHubError{
			Type:      ErrorTypeRateLimit,
			Message:   "secondary rate limit hit, back off before retrying",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	// The GraphQL client surfaces HTTP failures as plain errors carrying the
	// status text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return &GitHubError{
			Type:      ErrorTypeAuth,
			Message:   "authentication failed, check your GitHub token",
			Cause:     err,
			Resource:  resource,
			Retryable: false,
		}
	case strings.Contains(msg, "403"):
		return &GitHubError{
			Type:      ErrorTypePermission,
			Message:   "insufficient permissions, the token may be missing the repo scope",
			Cause:     err,
			Resource:  resource,
			Retryable: false,
		}
	}

	if isNetworkError(err) {
		return &GitHubError{
			Type:      ErrorTypeNetwork,
			Message:   "network error, check your connection and try again",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	return &GitHubError{
		Type:      ErrorTypeUnknown,
		Message:   err.Error(),
		Cause:     err,
		Resource:  resource,
		Retryable: false,
	}
}

// classifyErrorResponse maps a REST error response onto the error taxonomy.
func classifyErrorResponse(respErr *github.ErrorResponse, resource string) *GitHubError {
	base := &GitHubError{
		Resource: resource,
		Cause:    respErr,
	}

	switch respErr.Response.StatusCode {
	case http.StatusUnauthorized:
		base.Type = ErrorTypeAuth
		base.Message = "authentication failed, check your GitHub token"

	case http.StatusForbidden:
		if strings.Contains(respErr.Message, "rate limit") {
			base.Type = ErrorTypeRateLimit
			base.Message = "GitHub API rate limit exceeded, wait before retrying"
			base.Retryable = true
		} else {
			base.Type = ErrorTypePermission
			base.Message = "insufficient permissions, the token may be missing the repo scope"
		}

	case http.StatusNotFound:
		base.Type = ErrorTypeNotFound
		base.Message = "repository not found, it may have been renamed or deleted since listing"

	case http.StatusUnprocessableEntity:
		base.Type = ErrorTypeValidation
		base.Message = "GitHub rejected the update payload"
		if len(respErr.Errors) > 0 {
			var details []string
			for _, e := range respErr.Errors {
				if e.Field != "" {
					details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
				} else {
					details = append(details, e.Message)
				}
			}
			base.Message = fmt.Sprintf("GitHub rejected the update payload: %s", strings.Join(details, "; "))
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		base.Type = ErrorTypeNetwork
		base.Message = "GitHub API is temporarily unavailable, try again later"
		base.Retryable = true

	default:
		base.Type = ErrorTypeUnknown
		base.Message = respErr.Message
		base.Retryable = respErr.Response.StatusCode >= 500
	}

	return base
}

// isNetworkError checks for transport-level failures by message.
func isNetworkError(err error) bool {
	msg := strings.ToLower(err.Error())
	keywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
		"i/o timeout",
	}
	for _, keyword := range keywords {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

// RetryConfig configures the transport retry loop.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry configuration used for all API calls.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableOperation is an operation the transport layer may re-issue.
type RetryableOperation func() error

// WithRetry executes an operation, retrying with exponential backoff as long
// as the failure is classified retryable (rate limit, transient network).
// Non-retryable failures are returned immediately.
func WithRetry(operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		var ghErr *GitHubError
		if !errors.As(err, &ghErr) {
			return err
		}
		if !ghErr.IsRetryable() {
			return err
		}

		// A primary rate limit reports its reset time; waiting it out beats
		// blind backoff when the window is short.
		if ghErr.Type == ErrorTypeRateLimit {
			if rateErr, ok := ghErr.Cause.(*github.RateLimitError); ok {
				wait := time.Until(rateErr.Rate.Reset.Time)
				if wait > 0 && wait < 5*time.Minute {
					time.Sleep(wait)
				}
			}
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

// BatchError reports the aggregate outcome of a batch update in which at
// least one repository write failed.
type BatchError struct {
	Result  *BatchResult
	Partial bool
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.Partial {
		return fmt.Sprintf("partial failure: %d repositories updated, %d failed",
			len(e.Result.Succeeded), len(e.Result.Failed))
	}
	return fmt.Sprintf("all %d repository updates failed", len(e.Result.Failed))
}

// IsPartialFailure reports whether some repositories were updated
// successfully despite the failures.
func (e *BatchError) IsPartialFailure() bool {
	return e.Partial
}

// FailedRepositories returns the names of the repositories whose write
// failed, so a caller can retry just that subset.
func (e *BatchError) FailedRepositories() []string {
	names := make([]string, 0, len(e.Result.Failed))
	for name := range e.Result.Failed {
		names = append(names, name)
	}
	return names
}

// NewBatchError builds the aggregate error for a batch with failures.
func NewBatchError(result *BatchResult) *BatchError {
	return &BatchError{
		Result:  result,
		Partial: len(result.Succeeded) > 0,
	}
}
