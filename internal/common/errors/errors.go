// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidVariables ErrorCode = "INVALID_VARIABLES"

	ErrCodeAudioInvalid         ErrorCode = "AUDIO_INVALID"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeClassifierTimeout    ErrorCode = "CLASSIFIER_TIMEOUT"
	ErrCodeIntentSchemaInvalid  ErrorCode = "INTENT_SCHEMA_INVALID"

	ErrCodeProductNameRequired ErrorCode = "PRODUCT_NAME_REQUIRED"
	ErrCodeSuggestionFailed    ErrorCode = "SUGGESTION_FAILED"
	ErrCodeSuggestionTimeout   ErrorCode = "SUGGESTION_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// UserMessageKey is the error variable the host reads to show a toast.
const UserMessageKey = "userMessage"

// VoiceCommandUserMessage is shown whenever a voice command cannot be classified.
const VoiceCommandUserMessage = "Could not process your voice command. Please try again."

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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata sets a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithUserMessage attaches the message the host should display.
func (e *StandardError) WithUserMessage(msg string) *StandardError {
	return e.WithMetadata(UserMessageKey, msg)
}

// UserMessage returns the attached user-facing message, if any.
func (e *StandardError) UserMessage() string {
	if s, ok := e.Metadata[UserMessageKey].(string); ok {
		return s
	}
	return ""
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	if details == "" && cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidVariablesError reports job variables that could not be parsed.
func NewInvalidVariablesError(err error) *StandardError {
	return newError(ErrCodeInvalidVariables, "Invalid job variables", "", false, err)
}

// NewAudioInvalidError reports a clip that cannot be sent for classification.
func NewAudioInvalidError(details string) *StandardError {
	return newError(ErrCodeAudioInvalid, "Invalid audio clip", details, false, nil).
		WithUserMessage(VoiceCommandUserMessage)
}

// NewClassificationFailedError reports a transport or empty-output failure.
func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Voice command classification failed", "", true, err).
		WithUserMessage(VoiceCommandUserMessage)
}

// NewClassifierTimeoutError reports a classification deadline.
func NewClassifierTimeoutError(err error) *StandardError {
	return newError(ErrCodeClassifierTimeout, "Voice command classification timed out", "", true, err).
		WithUserMessage(VoiceCommandUserMessage)
}

// NewIntentSchemaInvalidError reports model output that does not match the intent schema.
func NewIntentSchemaInvalidError(details string) *StandardError {
	return newError(ErrCodeIntentSchemaInvalid, "Classifier returned an invalid intent", details, false, nil).
		WithUserMessage(VoiceCommandUserMessage)
}

func NewProductNameRequiredError() *StandardError {
	return newError(ErrCodeProductNameRequired, "Product name is required", "productName is empty", false, nil)
}

func NewSuggestionFailedError(err error) *StandardError {
	return newError(ErrCodeSuggestionFailed, "Product suggestion failed", "", true, err)
}

func NewSuggestionTimeoutError(err error) *StandardError {
	return newError(ErrCodeSuggestionTimeout, "Product suggestion timed out", "", true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", "", true, err)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to insert voice command record", "", true, err)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", "", false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Codes
// that are missing fall back to their own value.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidVariables:         "INVALID_VARIABLES",
	ErrCodeAudioInvalid:             "VOICE_COMMAND_FAILED",
	ErrCodeClassificationFailed:     "VOICE_COMMAND_FAILED",
	ErrCodeClassifierTimeout:        "VOICE_COMMAND_FAILED",
	ErrCodeIntentSchemaInvalid:      "VOICE_COMMAND_FAILED",
	ErrCodeProductNameRequired:      "PRODUCT_NAME_REQUIRED",
	ErrCodeSuggestionFailed:         "SUGGESTION_FAILED",
	ErrCodeSuggestionTimeout:        "SUGGESTION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassificationFailed,
		ErrCodeSuggestionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed:
		return 3

	case ErrCodeClassifierTimeout,
		ErrCodeSuggestionTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// Metadata is carried into the error variables.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

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
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUDIO") || strings.Contains(codeStr, "CLASSIF") || strings.Contains(codeStr, "INTENT"):
		return "VOICE"
	case strings.Contains(codeStr, "SUGGESTION") || strings.Contains(codeStr, "PRODUCT"):
		return "PRODUCT"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
