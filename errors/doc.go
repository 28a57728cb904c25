/*
Package errors provides semantic error types for the DocStore library.

The package defines common failure scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrConnection         = errors.New("connection failed")
	    ErrSchemaConflict     = errors.New("schema conflict")
	    ErrNotFound           = errors.New("entity not found")
	    ErrMissingIdentifier  = errors.New("missing identifier")
	    ErrDeleteVerification = errors.New("delete verification failed")
	    ErrInvalidInput       = errors.New("invalid input")
	)

Usage:

	// Check error type
	widget, err := store.FindByID(ctx, "123")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("widget %s does not exist", "123")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("Widget", "123")
	err := errors.NewValidationError("name", "unknown field")
	err := errors.NewDeleteVerificationError("Widget", "123", "456")

No error is retried within this layer; every failure is surfaced to the
caller with the entity type, identifier, and operation that produced it.
The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
