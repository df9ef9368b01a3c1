// Package errors provides structured error types for the resource manager.
//
// Errors are categorized by Phase (which operation failed) and Kind (error
// category). The Error type carries the resource type name, the identity
// involved and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindUnregisteredType).
//		Type("texture").
//		Identity(id.String()).
//		Detail("no loader registered").
//		Build()
//
// Or use convenience constructors for the common failures:
//
//	err := errors.DuplicateType(id.String(), "texture", "cubemap")
//	err := errors.CapacityExceeded("texture", id.String(), 1000)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind agree; IsKind
// matches on Kind alone.
package errors
