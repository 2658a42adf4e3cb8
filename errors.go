// Package ronincore implements a query-IR-to-SQL compiler and schema
// migration engine for a SQLite-backed record store. Applications describe
// models in the model catalogue (package model), submit queries as IR
// values (package ir), and the compiler (package compiler) turns them into
// parameterised SQL executed through a Transaction (package transaction).
// A separate diff engine (package migrate) compares two model lists and
// emits the IR queries needed to carry the live schema from one shape to
// the other.
package ronincore

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for conditions that recur across components.
var (
	// ErrMissingInstruction is returned when a required instruction (e.g.
	// limitedTo alongside before/after) is absent from a query.
	ErrMissingInstruction = errors.New("ronincore: missing required instruction")

	// ErrMutuallyExclusive is returned when two instructions that cannot
	// coexist (before and after) are both present.
	ErrMutuallyExclusive = errors.New("ronincore: mutually exclusive instructions")

	// ErrDriverAborted is returned when the driver call backing a batch is
	// cancelled or times out.
	ErrDriverAborted = errors.New("ronincore: driver call aborted")
)

// MissingInstructionError reports that a query depends on an instruction it
// doesn't carry (MISSING_INSTRUCTION).
type MissingInstructionError struct {
	// Instruction is the name of the instruction that was required.
	Instruction string
	// Target is the model or query target the instruction was required on.
	Target string
}

func (e *MissingInstructionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("ronincore: %s requires %q", e.Target, e.Instruction)
	}
	return fmt.Sprintf("ronincore: missing instruction %q", e.Instruction)
}

// Is reports whether target is ErrMissingInstruction.
func (e *MissingInstructionError) Is(target error) bool { return target == ErrMissingInstruction }

// NewMissingInstructionError returns a MissingInstructionError.
func NewMissingInstructionError(target, instruction string) *MissingInstructionError {
	return &MissingInstructionError{Target: target, Instruction: instruction}
}

// IsMissingInstruction reports whether err is (or wraps) a
// MissingInstructionError.
func IsMissingInstruction(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingInstructionError
	return errors.As(err, &e) || errors.Is(err, ErrMissingInstruction)
}

// MutuallyExclusiveError reports that two instructions that cannot both be
// present on a query were both supplied (MUTUALLY_EXCLUSIVE_INSTRUCTIONS).
type MutuallyExclusiveError struct {
	Instructions []string
}

func (e *MutuallyExclusiveError) Error() string {
	return fmt.Sprintf("ronincore: mutually exclusive instructions %v", e.Instructions)
}

// Is reports whether target is ErrMutuallyExclusive.
func (e *MutuallyExclusiveError) Is(target error) bool { return target == ErrMutuallyExclusive }

// NewMutuallyExclusiveError returns a MutuallyExclusiveError.
func NewMutuallyExclusiveError(instructions ...string) *MutuallyExclusiveError {
	return &MutuallyExclusiveError{Instructions: instructions}
}

// IsMutuallyExclusive reports whether err is (or wraps) a
// MutuallyExclusiveError.
func IsMutuallyExclusive(err error) bool {
	if err == nil {
		return false
	}
	var e *MutuallyExclusiveError
	return errors.As(err, &e) || errors.Is(err, ErrMutuallyExclusive)
}

// FieldNotFoundError reports that a dotted field path didn't resolve
// against a model (FIELD_NOT_FOUND).
type FieldNotFoundError struct {
	Model string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("ronincore: field %q not found on model %q", e.Field, e.Model)
}

// NewFieldNotFoundError returns a FieldNotFoundError.
func NewFieldNotFoundError(model, field string) *FieldNotFoundError {
	return &FieldNotFoundError{Model: model, Field: field}
}

// IsFieldNotFound reports whether err is (or wraps) a FieldNotFoundError.
func IsFieldNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *FieldNotFoundError
	return errors.As(err, &e)
}

// ModelNotFoundError reports that a slug or plural slug didn't resolve
// against the catalogue (MODEL_NOT_FOUND).
type ModelNotFoundError struct {
	Slug string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("ronincore: model %q not found", e.Slug)
}

// NewModelNotFoundError returns a ModelNotFoundError.
func NewModelNotFoundError(slug string) *ModelNotFoundError {
	return &ModelNotFoundError{Slug: slug}
}

// IsModelNotFound reports whether err is (or wraps) a ModelNotFoundError.
func IsModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *ModelNotFoundError
	return errors.As(err, &e)
}

// PresetNotFoundError reports that a `using` instruction referenced a
// preset the model doesn't define (PRESET_NOT_FOUND).
type PresetNotFoundError struct {
	Model  string
	Preset string
}

func (e *PresetNotFoundError) Error() string {
	return fmt.Sprintf("ronincore: preset %q not found on model %q", e.Preset, e.Model)
}

// NewPresetNotFoundError returns a PresetNotFoundError.
func NewPresetNotFoundError(model, preset string) *PresetNotFoundError {
	return &PresetNotFoundError{Model: model, Preset: preset}
}

// IsPresetNotFound reports whether err is (or wraps) a PresetNotFoundError.
func IsPresetNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *PresetNotFoundError
	return errors.As(err, &e)
}

// InvalidFieldValueError reports that a value couldn't be serialised for
// the field's declared type (INVALID_FIELD_VALUE).
type InvalidFieldValueError struct {
	Field string
	Value any
	Err   error
}

func (e *InvalidFieldValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ronincore: invalid value for field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("ronincore: invalid value %v for field %q", e.Value, e.Field)
}

// Unwrap returns the underlying error, if any.
func (e *InvalidFieldValueError) Unwrap() error { return e.Err }

// NewInvalidFieldValueError returns an InvalidFieldValueError.
func NewInvalidFieldValueError(field string, value any, err error) *InvalidFieldValueError {
	return &InvalidFieldValueError{Field: field, Value: value, Err: err}
}

// IsInvalidFieldValue reports whether err is (or wraps) an
// InvalidFieldValueError.
func IsInvalidFieldValue(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidFieldValueError
	return errors.As(err, &e)
}

// CycleDetectedError reports that model link targets formed a cycle that
// topological ordering for creation could not resolve (CYCLE_DETECTED).
type CycleDetectedError struct {
	Models []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("ronincore: cycle detected among models %v", e.Models)
}

// NewCycleDetectedError returns a CycleDetectedError.
func NewCycleDetectedError(models ...string) *CycleDetectedError {
	return &CycleDetectedError{Models: models}
}

// IsCycleDetected reports whether err is (or wraps) a CycleDetectedError.
func IsCycleDetected(err error) bool {
	if err == nil {
		return false
	}
	var e *CycleDetectedError
	return errors.As(err, &e)
}

// DriverAbortedError wraps the driver error that triggered a DRIVER_ABORTED
// failure, tagged with the Transaction's trace id for correlation.
type DriverAbortedError struct {
	TraceID string
	Err     error
}

func (e *DriverAbortedError) Error() string {
	return fmt.Sprintf("ronincore: driver call aborted (trace=%s): %v", e.TraceID, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *DriverAbortedError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDriverAborted.
func (e *DriverAbortedError) Is(target error) bool { return target == ErrDriverAborted }

// NewDriverAbortedError returns a DriverAbortedError.
func NewDriverAbortedError(traceID string, err error) *DriverAbortedError {
	return &DriverAbortedError{TraceID: traceID, Err: err}
}

// IsDriverAborted reports whether err is (or wraps) a DriverAbortedError.
func IsDriverAborted(err error) bool {
	if err == nil {
		return false
	}
	var e *DriverAbortedError
	return errors.As(err, &e) || errors.Is(err, ErrDriverAborted)
}
