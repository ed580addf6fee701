// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	ErrCodeIntentClassificationFailed ErrorCode = "INTENT_CLASSIFICATION_FAILED"
	ErrCodeLLMGenerationFailed        ErrorCode = "LLM_GENERATION_FAILED"
	ErrCodeLLMTimeout                 ErrorCode = "LLM_TIMEOUT"

	ErrCodeToolArgumentsInvalid ErrorCode = "TOOL_ARGUMENTS_INVALID"
	ErrCodeUnknownTool          ErrorCode = "UNKNOWN_TOOL"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDirectoryLoadFailed    ErrorCode = "DIRECTORY_LOAD_FAILED"

	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreError ErrorCode = "SESSION_STORE_ERROR"
	ErrCodeTurnFailed        ErrorCode = "TURN_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Zeebe engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail/throw variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	se := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		se.Details = cause.Error()
	}
	return se
}

// NewInputParsingFailedError reports job variables that could not be decoded.
func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err, false)
}

// NewValidationFailedError reports input that decoded but is unusable.
func NewValidationFailedError(details string) *StandardError {
	se := newError(ErrCodeValidationFailed, "Input validation failed", nil, false)
	se.Details = details
	return se
}

// NewIntentClassificationFailedError wraps a provider failure during classification.
func NewIntentClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeIntentClassificationFailed, "Intent classification failed", err, false)
}

// NewLLMGenerationFailedError wraps a provider failure in a specialist handler.
func NewLLMGenerationFailedError(handler string, err error) *StandardError {
	return newError(ErrCodeLLMGenerationFailed, "Response generation failed", err, false).
		WithMetadata("handler", handler)
}

// NewLLMTimeoutError reports a provider call that exceeded its deadline.
func NewLLMTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "Language model call timed out", err, false).
		WithMetadata("operation", operation)
}

// NewToolArgumentsInvalidError reports model-produced tool arguments that fail schema validation.
func NewToolArgumentsInvalidError(tool, details string) *StandardError {
	se := newError(ErrCodeToolArgumentsInvalid, "Tool arguments failed validation", nil, false)
	se.Details = fmt.Sprintf("tool: %s, %s", tool, details)
	return se
}

// NewUnknownToolError reports a tool name outside the bound tool set.
func NewUnknownToolError(tool string) *StandardError {
	se := newError(ErrCodeUnknownTool, "Tool is not available to this handler", nil, false)
	se.Details = fmt.Sprintf("tool: %s", tool)
	return se
}

// NewNotificationSendFailedError wraps an email or SNS delivery failure.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, false).
		WithMetadata("channel", channel)
}

// NewDirectoryLoadFailedError wraps a failure while loading reference data.
func NewDirectoryLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeDirectoryLoadFailed, "Failed to load directory data", err, false).
		WithMetadata("source", source)
}

// NewSessionNotFoundError reports an unknown call id.
func NewSessionNotFoundError(callID string) *StandardError {
	se := newError(ErrCodeSessionNotFound, "Call session not found", nil, false)
	se.Details = fmt.Sprintf("callId: %s", callID)
	return se
}

// NewSessionStoreError wraps a conversation store failure.
func NewSessionStoreError(op string, err error) *StandardError {
	return newError(ErrCodeSessionStoreError, "Conversation store error", err, true).
		WithMetadata("operation", op)
}

// NewTurnFailedError reports a turn that ended without a usable reply.
func NewTurnFailedError(details string) *StandardError {
	se := newError(ErrCodeTurnFailed, "Turn did not produce a reply", nil, false)
	se.Details = details
	return se
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("%s service error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("%s timed out", service), err, true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	se := newError(ErrCodeNotFound, fmt.Sprintf("%s resource not found", service), nil, false)
	se.Details = details
	return se
}

func NewAuthenticationError(details string) *StandardError {
	se := newError(ErrCodeAuthentication, "Authentication failed", nil, false)
	se.Details = details
	return se
}

// GetRetryCount returns the job retry count for a code. A caller is waiting on the line for every
// front-desk job, so turn-level failures are never retried by the engine.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExternalService,
		ErrCodeTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	return stderrors.As(err, &se) && se.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "TOOL"):
		return "AI"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "TURN"):
		return "SESSION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "DIRECTORY"):
		return "DATA"
	case strings.Contains(codeStr, "PARSING") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
