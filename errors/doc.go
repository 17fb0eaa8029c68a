// Package errors provides the structured errors returned throughout docdir.
//
// Every failure surfaced by a directory, an input stream or a store backend is
// a PlatformError carrying an ErrorCode, a retry classification and optional
// context metadata. The package stays compatible with the standard library:
// errors.Is, errors.As and errors.Unwrap traverse PlatformError chains, so a
// caller can test either the code or the underlying io/fs sentinel.
//
// Creating and wrapping errors:
//
//	err := errors.New(errors.CodeNotFound, "no record for segments.gen")
//
//	recs, err := store.Query(ctx, filter)
//	if err != nil {
//	    return errors.Wrap(err, errors.CodeDatabase, "query failed")
//	}
//
// Inspecting errors:
//
//	switch errors.GetCode(err) {
//	case errors.CodeNotFound:
//	    // treat as missing file
//	case errors.CodeUnavailable:
//	    // store is down
//	}
//
//	if errors.IsRetryable(err) {
//	    // the store reported a transient failure
//	}
//
// # Codes
//
//   - Lookup: CodeNotFound, CodeAlreadyExists, CodeCorrupted
//   - Contract: CodeNotImplemented, CodeClosed, CodeInvalidInput, CodeInvalidConfig
//   - Store: CodeDatabase, CodeNetwork, CodeTimeout, CodeUnavailable
//   - System: CodeInternal, CodeUnknown
//
// Store failures (CodeDatabase, CodeNetwork, CodeTimeout, CodeUnavailable) are
// retryable by default; everything else is permanent. Wrapping preserves the
// classification of the innermost PlatformError.
package errors
