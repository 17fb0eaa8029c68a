package errors

import "fmt"

// PlatformError is an error with a code, a retry classification and
// optional context metadata.
type PlatformError interface {
	error

	// Code returns the error code.
	Code() ErrorCode

	// Classification returns whether the error is retryable.
	Classification() ErrorClassification

	// Message returns the message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil.
	Context() map[string]interface{}

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

// platformError is immutable once built; every With* helper returns a copy.
type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode { return e.code }

func (e *platformError) Classification() ErrorClassification { return e.classification }

func (e *platformError) Message() string { return e.message }

func (e *platformError) Context() map[string]interface{} {
	return copyContext(e.context)
}

func (e *platformError) Unwrap() error { return e.cause }

func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
