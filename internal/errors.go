package internal

import (
	"fmt"
	"runtime"
)

// Kind is the closed taxonomy of error kinds the engine can raise.
type Kind int

const (
	KindUnknown Kind = iota
	KindDependencyCycle
	KindSelfObservation
	KindNullPointer
	KindResourceNotInitialized
	KindTypeMismatch
	KindInvalidState
	KindBatchOperationConflict
	KindThreadSafetyViolation // reserved; not raised by core today
	KindGraphCorruption
)

func (k Kind) String() string {
	switch k {
	case KindDependencyCycle:
		return "DependencyCycle"
	case KindSelfObservation:
		return "SelfObservation"
	case KindNullPointer:
		return "NullPointer"
	case KindResourceNotInitialized:
		return "ResourceNotInitialized"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindInvalidState:
		return "InvalidState"
	case KindBatchOperationConflict:
		return "BatchOperationConflict"
	case KindThreadSafetyViolation:
		return "ThreadSafetyViolation"
	case KindGraphCorruption:
		return "GraphCorruption"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type raised by the graph, node and batch
// machinery. It carries a kind tag plus the call site that raised it, so
// callers can both branch on errors.Is(err, ErrDependencyCycle) and log
// the origin of a defensive GraphCorruption error.
type Error struct {
	Kind     Kind
	Message  string
	File     string
	Line     int
	Function string
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("reactor: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("reactor: %s: %s (%s:%d in %s)", e.Kind, e.Message, e.File, e.Line, e.Function)
}

// Is lets errors.Is(err, ErrDependencyCycle) work against the sentinel
// kind markers below, by matching on Kind rather than identity.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok {
		return false
	}
	return sentinel.Kind == e.Kind
}

// NewError builds an *Error, capturing the caller's file/line/function.
func NewError(kind Kind, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	err := &Error{Kind: kind, Message: msg}
	if pc, file, line, ok := runtime.Caller(1); ok {
		err.File = file
		err.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			err.Function = fn.Name()
		}
	}
	return err
}

// Sentinels for errors.Is comparisons. Only Kind is compared, so the
// message/location on these is irrelevant and left empty.
var (
	ErrDependencyCycle        = &Error{Kind: KindDependencyCycle}
	ErrSelfObservation        = &Error{Kind: KindSelfObservation}
	ErrNullPointer            = &Error{Kind: KindNullPointer}
	ErrResourceNotInitialized = &Error{Kind: KindResourceNotInitialized}
	ErrTypeMismatch           = &Error{Kind: KindTypeMismatch}
	ErrInvalidState           = &Error{Kind: KindInvalidState}
	ErrBatchOperationConflict = &Error{Kind: KindBatchOperationConflict}
	ErrThreadSafetyViolation  = &Error{Kind: KindThreadSafetyViolation}
	ErrGraphCorruption        = &Error{Kind: KindGraphCorruption}
)
