package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseRegister   Phase = "register"   // loader registration
	PhaseInitialize Phase = "initialize" // table and pool construction
	PhaseLoad       Phase = "load"       // get / resolve
	PhaseRelease    Phase = "release"    // release / destroy
	PhaseClone      Phase = "clone"      // ownership duplication
	PhaseQuery      Phase = "query"      // identity lookups
	PhaseTeardown   Phase = "teardown"   // manager close
	PhaseConfig     Phase = "config"     // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateType      Kind = "duplicate_type"
	KindUnregisteredType   Kind = "unregistered_type"
	KindLoadFailure        Kind = "load_failure"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindInvariantViolation Kind = "invariant_violation"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyInitialized Kind = "already_initialized"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidData        Kind = "invalid_data"
	KindNotFound           Kind = "not_found"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Type     string
	Identity string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Identity != "" {
		b.WriteString(" at ")
		b.WriteString(e.Identity)
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the resource type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Identity sets the identity the operation was working on
func (b *Builder) Identity(id string) *Builder {
	b.err.Identity = id
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the resource manager taxonomy

// DuplicateType reports two registrations sharing one type id
func DuplicateType(typeID, first, second string) *Error {
	return &Error{
		Phase:    PhaseInitialize,
		Kind:     KindDuplicateType,
		Identity: typeID,
		Type:     second,
		Detail:   fmt.Sprintf("type id already registered by %q", first),
	}
}

// UnregisteredType reports a type id with no loader
func UnregisteredType(phase Phase, typeID string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnregisteredType,
		Identity: typeID,
		Detail:   "no loader registered for type",
	}
}

// CapacityExceeded reports an exhausted instance pool while loading identity
func CapacityExceeded(typeName, identity string, capacity int) *Error {
	return &Error{
		Phase:    PhaseLoad,
		Kind:     KindCapacityExceeded,
		Type:     typeName,
		Identity: identity,
		Detail:   fmt.Sprintf("instance pool exhausted (capacity %d)", capacity),
		Value:    capacity,
	}
}

// InvariantViolation reports corrupted reference bookkeeping
func InvariantViolation(phase Phase, identity, detail string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvariantViolation,
		Identity: identity,
		Detail:   detail,
	}
}

// NotInitialized reports use of a manager before Initialize
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// AlreadyInitialized reports a mutation that is only legal before Initialize
func AlreadyInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyInitialized,
		Detail: fmt.Sprintf("%s already initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, typeName, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Type:   typeName,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
