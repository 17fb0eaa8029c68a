package errors

import stderrors "errors"

// WithContext returns a copy of err with one context field added.
// A plain error is first converted to a PlatformError with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "category", "articles")
func WithContext(err error, key string, value interface{}) PlatformError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with fields merged into its context.
// New fields override existing ones with the same key.
// Returns nil if err is nil.
func WithContextMap(err error, fields map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	base := toPlatform(err)
	merged := copyContext(base.context)
	if merged == nil {
		merged = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &platformError{
		code:           base.code,
		classification: base.classification,
		message:        base.message,
		context:        merged,
		cause:          base.cause,
	}
}

// WithClassification returns a copy of err with its classification replaced.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}

	base := toPlatform(err)
	return &platformError{
		code:           base.code,
		classification: classification,
		message:        base.message,
		context:        copyContext(base.context),
		cause:          base.cause,
	}
}

// toPlatform returns the first PlatformError in err's chain as a concrete
// value, or converts err to one with CodeUnknown.
func toPlatform(err error) *platformError {
	var pe PlatformError
	if stderrors.As(err, &pe) {
		if concrete, ok := pe.(*platformError); ok {
			return concrete
		}
		return &platformError{
			code:           pe.Code(),
			classification: pe.Classification(),
			message:        pe.Message(),
			context:        pe.Context(),
			cause:          pe.Unwrap(),
		}
	}
	return &platformError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
