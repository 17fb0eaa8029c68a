package errors

import stderrors "errors"

// Is reports whether any error in err's chain matches target.
// It is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode returns the code of the outermost PlatformError in err's chain.
// Returns CodeUnknown for nil or plain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether the outermost PlatformError in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetClassification returns the classification of the outermost
// PlatformError in err's chain. Plain and nil errors are permanent.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
