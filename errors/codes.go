package errors

// ErrorCode identifies a class of failure.
// Codes are strings so they read well in logs and JSON.
type ErrorCode string

const (
	// Lookup errors.

	// CodeNotFound indicates no record matched a lookup that required one.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the target name is already taken.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeCorrupted indicates the store violates a namespace invariant,
	// for example two records sharing one name.
	CodeCorrupted ErrorCode = "CORRUPTED"

	// Contract errors.

	// CodeNotImplemented indicates the operation is not supported.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// CodeClosed indicates the resource was used after Close.
	CodeClosed ErrorCode = "CLOSED"

	// CodeInvalidInput indicates a malformed argument.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Store errors.

	// CodeDatabase indicates the store rejected or failed an operation.
	CodeDatabase ErrorCode = "DATABASE_ERROR"

	// CodeNetwork indicates the store could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates a store operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates the store is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// System errors.

	// CodeInternal indicates a bug or an impossible state.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification tells callers whether retrying may succeed.
type ErrorClassification string

const (
	// ClassificationRetryable marks transient failures.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that will recur on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether the classification allows a retry.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var retryableCodes = map[ErrorCode]bool{
	CodeDatabase:    true,
	CodeNetwork:     true,
	CodeTimeout:     true,
	CodeUnavailable: true,
}

// defaultClassification returns the classification a fresh error with code
// receives. Unknown codes are permanent.
func defaultClassification(code ErrorCode) ErrorClassification {
	if retryableCodes[code] {
		return ClassificationRetryable
	}
	return ClassificationPermanent
}
