package model

import (
	"fmt"
	"strings"
)

// Failure codes reported in ValidationFailure.Code
const (
	CodeRequired       = "required"
	CodeInvalidType    = "invalid_type"
	CodeInvalidDate    = "invalid_date"
	CodeInvalidAmount  = "invalid_amount"
	CodeInvalidCode    = "invalid_code"
	CodeEmptyValue     = "empty_value"
	CodeExpectedObject = "expected_object"
	CodeExpectedArray  = "expected_array"
	CodeTooFewItems    = "too_few_items"
)

// CoercionError represents a single value that cannot be converted to its declared type
type CoercionError struct {
	Coercer string
	Code    string
	Value   interface{}
	Message string
}

func (e *CoercionError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("[%s] %s (value=%v)", e.Coercer, e.Message, e.Value)
	}
	return fmt.Sprintf("[%s] %s", e.Coercer, e.Message)
}

// NewCoercionError creates a new coercion error
func NewCoercionError(coercer, code string, value interface{}, message string) *CoercionError {
	return &CoercionError{
		Coercer: coercer,
		Code:    code,
		Value:   value,
		Message: message,
	}
}

// ValidationFailure is one failing path found while walking a schema
type ValidationFailure struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
}

// PathString joins the failure path with dots
func (f ValidationFailure) PathString() string {
	if len(f.Path) == 0 {
		return "$"
	}
	return strings.Join(f.Path, ".")
}

func (f ValidationFailure) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.PathString(), f.Message, f.Code)
}

// SchemaValidationError aggregates every failure found for one document
type SchemaValidationError struct {
	Profile  string
	Failures []ValidationFailure
}

func (e *SchemaValidationError) Error() string {
	switch len(e.Failures) {
	case 0:
		return fmt.Sprintf("[%s] schema validation failed", e.Profile)
	case 1:
		return fmt.Sprintf("[%s] schema validation failed: %s", e.Profile, e.Failures[0])
	default:
		return fmt.Sprintf("[%s] schema validation failed: %s (and %d more)", e.Profile, e.Failures[0], len(e.Failures)-1)
	}
}

// NewSchemaValidationError creates a new schema validation error
func NewSchemaValidationError(profile string, failures []ValidationFailure) *SchemaValidationError {
	return &SchemaValidationError{
		Profile:  profile,
		Failures: failures,
	}
}

// ZugferdValidationError is raised by an external validator against built XML.
// Detail carries the validator's own diagnostic payload untouched.
type ZugferdValidationError struct {
	Validator string
	Profile   string
	Message   string
	Detail    interface{}
	Cause     error
}

func (e *ZugferdValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation failed [%s/%s]: %s (%v)", e.Validator, e.Profile, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation failed [%s/%s]: %s", e.Validator, e.Profile, e.Message)
}

func (e *ZugferdValidationError) Unwrap() error {
	return e.Cause
}

// NewZugferdValidationError creates a new validator error
func NewZugferdValidationError(validator, profile, message string, detail interface{}, cause error) *ZugferdValidationError {
	return &ZugferdValidationError{
		Validator: validator,
		Profile:   profile,
		Message:   message,
		Detail:    detail,
		Cause:     cause,
	}
}

// ConfigError represents a structural or deployment problem (bad schema, missing asset)
type ConfigError struct {
	Component string
	Message   string
	Cause     error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error [%s]: %s (%v)", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error [%s]: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error
func NewConfigError(component, message string, cause error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Cause:     cause,
	}
}
