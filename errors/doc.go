// Package errors provides the structured error type used by seqkit for
// precondition violations such as an invalid batch size.
//
// Errors raised by caller-supplied sources and stage functions are never
// wrapped; they reach the caller unchanged so errors.Is and errors.As keep
// working on them.
package errors
