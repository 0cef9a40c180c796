package errs

import "net/http"

// errorMap holds the template CustomError for every known code.
// A zero Status is filled in as 200 by NewError.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},

	// 2xxx
	ErrMalformedFrame:       {Code: ErrMalformedFrame, Message: "Malformed frame."},
	ErrUnsupportedFrameType: {Code: ErrUnsupportedFrameType, Message: "Unsupported frame type %q."},

	// 3xxx
	ErrUnauthenticated:    {Code: ErrUnauthenticated, Message: "Authentication required.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in.", Status: http.StatusConflict},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username is already taken.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx
	ErrUnknown:                {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrAuthUnavailable:        {Code: ErrAuthUnavailable, Message: "Account service is not available.", Status: http.StatusServiceUnavailable},
	ErrTransportFailure:       {Code: ErrTransportFailure, Message: "Connection %s is not writable."},
	ErrInvariantViolation:     {Code: ErrInvariantViolation, Message: "Internal invariant violated: %s."},
	ErrDuplicateHandle:        {Code: ErrDuplicateHandle, Message: "Connection %s is already registered."},
	ErrInvalidStateTransition: {Code: ErrInvalidStateTransition, Message: "Invalid connection state transition %s -> %s."},
}
