/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrConnection is returned when a connection pool cannot be created or a connection acquired
	ErrConnection = errors.New("connection failed")

	// ErrSchemaConflict is returned when a DDL statement fails for a reason other than "already exists"
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrNotFound is returned when a lookup by identifier matches no row
	ErrNotFound = errors.New("entity not found")

	// ErrMissingIdentifier is returned when load/delete runs without a resolvable identifier
	ErrMissingIdentifier = errors.New("missing identifier")

	// ErrDeleteVerification is returned when the identifier returned by a DELETE does not match
	ErrDeleteVerification = errors.New("delete verification failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ConnectionError represents a pool creation or connection acquisition failure.
// It carries the underlying driver error uninterpreted.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %q failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// SchemaConflictError represents a DDL failure other than "already exists"
type SchemaConflictError struct {
	Table string
	Err   error
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict on table %q: %v", e.Table, e.Err)
}

func (e *SchemaConflictError) Unwrap() error {
	return e.Err
}

func (e *SchemaConflictError) Is(target error) bool {
	return target == ErrSchemaConflict
}

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with identifier %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingIdentifierError represents a load or delete attempted without a
// resolvable identifier, or with an identifier that matches no stored row.
type MissingIdentifierError struct {
	Type      string
	Operation string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s %s: missing identifier or no matching row", e.Type, e.Operation)
}

func (e *MissingIdentifierError) Is(target error) bool {
	return target == ErrMissingIdentifier
}

// DeleteVerificationError represents a post-delete identifier mismatch.
// It is a data-integrity failure and is never swallowed.
type DeleteVerificationError struct {
	Type string
	Want string
	Got  string
}

func (e *DeleteVerificationError) Error() string {
	return fmt.Sprintf("%s delete verification failed: want identifier %q, got %q", e.Type, e.Want, e.Got)
}

func (e *DeleteVerificationError) Is(target error) bool {
	return target == ErrDeleteVerification
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidArgumentError represents a malformed argument to a store operation
type InvalidArgumentError struct {
	Operation string
	Message   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument to %s: %s", e.Operation, e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewConnectionError creates a new ConnectionError
func NewConnectionError(target string, err error) error {
	return &ConnectionError{Target: target, Err: err}
}

// NewSchemaConflictError creates a new SchemaConflictError
func NewSchemaConflictError(table string, err error) error {
	return &SchemaConflictError{Table: table, Err: err}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewMissingIdentifierError creates a new MissingIdentifierError
func NewMissingIdentifierError(entityType, operation string) error {
	return &MissingIdentifierError{Type: entityType, Operation: operation}
}

// NewDeleteVerificationError creates a new DeleteVerificationError
func NewDeleteVerificationError(entityType, want, got string) error {
	return &DeleteVerificationError{Type: entityType, Want: want, Got: got}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(operation, message string) error {
	return &InvalidArgumentError{Operation: operation, Message: message}
}

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsSchemaConflict checks if an error is a schema conflict error
func IsSchemaConflict(err error) bool {
	return errors.Is(err, ErrSchemaConflict)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingIdentifier checks if an error is a missing identifier error
func IsMissingIdentifier(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}

// IsDeleteVerification checks if an error is a delete verification error
func IsDeleteVerification(err error) bool {
	return errors.Is(err, ErrDeleteVerification)
}

// IsInvalidInput checks if an error is a validation or invalid argument error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
