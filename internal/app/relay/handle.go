package relay

import "github.com/gorilla/websocket"

// Close codes sent to clients when the server ends a connection.
const (
	CloseNormal          = websocket.CloseNormalClosure
	CloseGoingAway       = websocket.CloseGoingAway
	CloseInternalError   = websocket.CloseInternalServerErr
	CloseUnauthenticated = 4401
	CloseSendFailed      = 4408
)

// Handle is one live bidirectional connection as seen by the registry and broadcaster.
// Implementations must be comparable (pointer types) and safe for concurrent use.
type Handle interface {
	// ID returns a unique, stable identifier used in logs.
	ID() string

	// Send queues data for delivery without blocking. An error means the connection
	// can no longer be written to and must be treated as disconnected.
	Send(data []byte) error

	// Close ends the connection with the given close code. Calls after the first are no-ops.
	Close(code int, reason string) error
}

// Transport is a Handle that also delivers inbound frames.
type Transport interface {
	Handle

	// ReadLoop calls onFrame for each inbound frame until the connection fails or is
	// closed by either side, and returns the terminating error.
	ReadLoop(onFrame func(frame []byte)) error
}

// TokenVerifier turns a handshake token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (identity string, err error)
}
