package models

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeBlocked       ErrorCode = "BLOCKED"
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeFetchFailed   ErrorCode = "FETCH_FAILED"
	ErrCodeSessionClosed ErrorCode = "SESSION_CLOSED"
	ErrCodeBrowserInit   ErrorCode = "BROWSER_INIT"
	ErrCodeInsufficient  ErrorCode = "INSUFFICIENT_CONTENT"
	ErrCodeValidation    ErrorCode = "VALIDATION"
)

// User facing messages shared by the static and dynamic paths
const (
	MsgAccessDenied    = "Access denied. This site may be blocking automated access or requires authentication."
	MsgConnectTimeout  = "Connection timed out. The site may be blocking automated access."
	MsgSessionClosed   = "Browser or page closed unexpectedly. This site may be blocking automated access or has protection mechanisms."
	MsgNavigationSlow  = "Page timed out while loading. This site may be blocking automated access, requires authentication, or is very slow."
	MsgInsufficient    = "Static content insufficient, falling back to browser rendering"
	msgFetchFailedFmt  = "Failed to fetch page: %v"
	msgBrowserInitFmt  = "Failed to initialize browser: %v"
	msgRenderFailedFmt = "Browser rendering failed: %v"
)

// Sentinels for errors.Is matching against a code
var (
	ErrBlocked       = &ScrapeError{Code: ErrCodeBlocked}
	ErrTimeout       = &ScrapeError{Code: ErrCodeTimeout}
	ErrFetchFailed   = &ScrapeError{Code: ErrCodeFetchFailed}
	ErrSessionClosed = &ScrapeError{Code: ErrCodeSessionClosed}
	ErrBrowserInit   = &ScrapeError{Code: ErrCodeBrowserInit}
	ErrInsufficient  = &ScrapeError{Code: ErrCodeInsufficient}
	ErrValidation    = &ScrapeError{Code: ErrCodeValidation}
)

// ScrapeError wraps errors with a code and a user facing message
type ScrapeError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *ScrapeError) Is(target error) bool {
	if t, ok := target.(*ScrapeError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewScrapeError creates a new ScrapeError
func NewScrapeError(code ErrorCode, message string, err error) *ScrapeError {
	return &ScrapeError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithRetry marks the error as retryable
func (e *ScrapeError) WithRetry() *ScrapeError {
	e.Retry = true
	return e
}

// WithDetail adds a detail to the error
func (e *ScrapeError) WithDetail(key string, value interface{}) *ScrapeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// BlockedError reports that the site refused automated access
func BlockedError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeBlocked, MsgAccessDenied, err)
}

// ConnectTimeoutError reports a connect phase timeout
func ConnectTimeoutError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeTimeout, MsgConnectTimeout, err)
}

// FetchFailedError wraps any other static fetch failure
func FetchFailedError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeFetchFailed, fmt.Sprintf(msgFetchFailedFmt, err), err)
}

// SessionClosedError reports that the browser session died or was aborted
func SessionClosedError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeSessionClosed, MsgSessionClosed, err)
}

// NavigationAbortedError reports a navigation aborted by the site
func NavigationAbortedError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeBlocked, MsgSessionClosed, err)
}

// NavigationTimeoutError reports that the page never reached DOM ready
func NavigationTimeoutError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeTimeout, MsgNavigationSlow, err)
}

// BrowserInitError reports that a browser session could not be opened
func BrowserInitError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeBrowserInit, fmt.Sprintf(msgBrowserInitFmt, err), err)
}

// RenderFailedError reports a failure outside any known render phase
func RenderFailedError(err error) *ScrapeError {
	return NewScrapeError(ErrCodeFetchFailed, fmt.Sprintf(msgRenderFailedFmt, err), err)
}

// InsufficientContentError reports static HTML that needs a browser
func InsufficientContentError(reason string) *ScrapeError {
	return NewScrapeError(ErrCodeInsufficient, MsgInsufficient, nil).WithDetail("reason", reason)
}

// ValidationError reports a request rejected before scraping
func ValidationError(field string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeValidation, err.Error(), err).WithDetail("field", field)
}

// MessageOf returns the user facing message of err
func MessageOf(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
