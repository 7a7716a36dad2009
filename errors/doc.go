// Package errors provides structured error types for the phpser library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the byte offset of the
// offending node, the field path, the expected shape and the value kind that
// was actually found, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindShapeMismatch).
//		Path("user", "age").
//		Offset(17).
//		Shape("integer").
//		Got("array").
//		Detail("cannot decode array into integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ShapeMismatch(path, offset, "integer", "array")
//	err := errors.Truncated(errors.PhaseScan, offset)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
