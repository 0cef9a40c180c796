/*
Package errs provides the application error type and its code constants.

Codes identify relay failures in logs and auth failures in HTTP responses.
*/
package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the target type.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 2xxx: Relay frame errors
const (
	// ErrMalformedFrame indicates an inbound frame that could not be decoded or failed
	// shape validation. The frame is dropped; the connection stays open.
	ErrMalformedFrame = 2301

	// ErrUnsupportedFrameType indicates an inbound frame with a missing or unknown type.
	ErrUnsupportedFrameType = 2302
)

// 3xxx: Identity and session errors
const (
	// ErrUnauthenticated indicates a missing, invalid or expired handshake token, or a
	// frame from a connection that has no registry entry.
	ErrUnauthenticated = 3101

	// ErrAlreadyLoggedIn indicates a credential request carrying a valid bearer token.
	ErrAlreadyLoggedIn = 3201

	// ErrInvalidUsername indicates a username that does not match the allowed pattern.
	ErrInvalidUsername = 3202

	// ErrInvalidPassword indicates a password outside the allowed length.
	ErrInvalidPassword = 3203

	// ErrUserAlreadyExists indicates that the username is taken.
	ErrUserAlreadyExists = 3204

	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	ErrInvalidCredentials = 3205

	// ErrUnauthorized indicates a request that requires a valid bearer token.
	ErrUnauthorized = 3206
)

// 5xxx: Internal system errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrAuthUnavailable indicates that the credential store is not configured.
	ErrAuthUnavailable = 5001

	// ErrTransportFailure indicates a send or read failure on one connection.
	ErrTransportFailure = 5101

	// ErrInvariantViolation indicates internal state that should be impossible.
	ErrInvariantViolation = 5102

	// ErrDuplicateHandle indicates an attempt to register a connection handle twice.
	ErrDuplicateHandle = 5103

	// ErrInvalidStateTransition indicates a connection lifecycle step out of order.
	ErrInvalidStateTransition = 5104
)
