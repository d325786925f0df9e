package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Sentinel errors for caller-fault and workflow conditions. These are never
// retried.
var (
	// ErrEmptyInput indicates text scoring was invoked with blank input.
	ErrEmptyInput = errors.New("empty input: text is required")

	// ErrSaveRequiresIdentity indicates a persist attempt without an owner
	// identity. A workflow branch, not a system failure: the caller acquires
	// an identity and retries the save.
	ErrSaveRequiresIdentity = errors.New("save requires an owner identity")

	// ErrNotFound indicates a store operation referenced a nonexistent record.
	ErrNotFound = errors.New("record not found")
)

// TransientError represents a retryable upstream failure (5xx-class).
type TransientError struct {
	Err        error
	StatusCode int    // HTTP status code if applicable
	Message    string // user-facing message
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient upstream error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// QuotaError represents a rate-limit or quota condition. It is classified
// distinctly from transient failures and is never retried automatically.
type QuotaError struct {
	Err        error
	StatusCode int
}

// quotaMessage is the one prescribed user-facing message in the taxonomy; all
// other errors surface their message as-is.
const quotaMessage = "The service quota has been reached. Please wait a moment and try again."

func (e *QuotaError) Error() string {
	return quotaMessage
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

// MalformedError represents a structurally invalid oracle response. Retrying
// the same malformed contract will not help, so it is never retried.
type MalformedError struct {
	Err     error
	Message string
}

func (e *MalformedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("malformed oracle response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IncompleteError represents a partial or inconsistent generation result. The
// whole generation call fails; no partial content is ever applied.
type IncompleteError struct {
	Err     error
	Message string
}

func (e *IncompleteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generation incomplete: %v", e.Err)
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

// IsTransient checks if an error is retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Quota is checked first: a 429 must never fall into the retry loop.
	if IsQuota(err) {
		return false
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		return true
	}

	// Connection-level failures (refused, reset, timeout) are retryable.
	if isNetworkError(err) {
		return true
	}

	return false
}

// IsQuota checks if an error is a quota/rate-limit condition.
func IsQuota(err error) bool {
	var quotaErr *QuotaError
	return errors.As(err, &quotaErr)
}

// IsMalformed checks if an error is a structurally invalid oracle response.
func IsMalformed(err error) bool {
	var malformedErr *MalformedError
	return errors.As(err, &malformedErr)
}

// IsIncomplete checks if an error is a partial generation result.
func IsIncomplete(err error) bool {
	var incompleteErr *IncompleteError
	return errors.As(err, &incompleteErr)
}

// IsNotFound checks if an error is a missing-record condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// quotaPatterns are matched case-insensitively against upstream error bodies;
// any hit classifies the failure as quota regardless of status code.
var quotaPatterns = []string{"quota", "rate limit", "capacity"}

// FromHTTPStatus classifies a non-2xx oracle response. 429, or any status
// whose body mentions a quota condition, maps to QuotaError; 500/502/503/504
// map to TransientError; everything else is a permanent failure for that call.
func FromHTTPStatus(op string, statusCode int, body []byte) error {
	base := fmt.Errorf("%s: status %d: %s", op, statusCode, strings.TrimSpace(string(body)))

	if statusCode == http.StatusTooManyRequests || containsQuotaPattern(string(body)) {
		return &QuotaError{Err: base, StatusCode: statusCode}
	}

	switch statusCode {
	case http.StatusInternalServerError, // 500
		http.StatusBadGateway,         // 502
		http.StatusServiceUnavailable, // 503
		http.StatusGatewayTimeout:     // 504
		return &TransientError{Err: base, StatusCode: statusCode}
	}

	return base
}

func containsQuotaPattern(body string) bool {
	lower := strings.ToLower(body)
	for _, pattern := range quotaPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"timeout",
		"deadline exceeded",
	}
	for _, pattern := range networkPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// Helper constructors

// NewTransientError creates a transient error with a user-facing message.
func NewTransientError(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// NewQuotaError creates a quota error wrapping the upstream cause.
func NewQuotaError(err error) *QuotaError {
	return &QuotaError{Err: err}
}

// NewMalformedError creates a malformed-response error.
func NewMalformedError(err error, message string) *MalformedError {
	return &MalformedError{Err: err, Message: message}
}

// NewIncompleteError creates an incomplete-generation error.
func NewIncompleteError(err error, message string) *IncompleteError {
	return &IncompleteError{Err: err, Message: message}
}
