package errors

import "errors"

// Centralized sentinel errors for the application. Services return these (or
// wrap them with fmt.Errorf and %w) instead of HTTP status codes; the API
// layer checks them with errors.Is and maps them to responses.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized signifies that a required credential was missing or
	// rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable signifies that an upstream collaborator (the assistant
	// backend) could not be reached or returned a broken response.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrInternal signifies an unexpected error on the server. Used to avoid
	// leaking implementation details to the client.
	ErrInternal = errors.New("internal server error")
)
