package reactor

import "github.com/kestrel-dev/reactor/internal"

// Error kinds mirror spec.md §7's closed taxonomy. Compare with
// errors.Is(err, reactor.ErrDependencyCycle) etc; the underlying
// *internal.Error matches by Kind, not identity, so wrapped errors
// still compare correctly.
var (
	ErrDependencyCycle        = internal.ErrDependencyCycle
	ErrSelfObservation        = internal.ErrSelfObservation
	ErrNullPointer            = internal.ErrNullPointer
	ErrResourceNotInitialized = internal.ErrResourceNotInitialized
	ErrTypeMismatch           = internal.ErrTypeMismatch
	ErrInvalidState           = internal.ErrInvalidState
	ErrBatchOperationConflict = internal.ErrBatchOperationConflict
	ErrThreadSafetyViolation  = internal.ErrThreadSafetyViolation
	ErrGraphCorruption        = internal.ErrGraphCorruption
)
