package relay

import (
	"errors"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

// Hub owns the Registry, Broadcaster, Gate and Dispatcher for the process.
type Hub struct {
	registry    *Registry
	broadcaster *Broadcaster
	gate        *Gate
	dispatcher  *Dispatcher

	shuttingDown atomic.Bool

	logger zerolog.Logger
}

// NewHub returns a Hub admitting connections whose tokens verifier accepts.
func NewHub(verifier TokenVerifier) *Hub {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)

	return &Hub{
		registry:    registry,
		broadcaster: broadcaster,
		gate:        NewGate(verifier, registry, broadcaster),
		dispatcher:  NewDispatcher(registry, broadcaster),
		logger:      logx.Component("Hub"),
	}
}

// Serve runs one connection from handshake to disconnect and returns when it has
// been removed from the registry. Rejected connections are closed by the Gate.
func (h *Hub) Serve(t Transport, token string) {
	if h.shuttingDown.Load() {
		closeQuietly(h.logger, t, CloseGoingAway, "server shutting down")
		return
	}

	session, admitErr := h.gate.Admit(t, token)
	if admitErr != nil {
		return
	}

	logger := h.logger.With().Str("conn_id", t.ID()).Str("username", session.Identity()).Logger()

	err := t.ReadLoop(func(frame []byte) {
		if dropErr := h.dispatcher.Dispatch(t, frame); dropErr != nil {
			logger.Debug().Int("code", dropErr.Code).Msg("Inbound frame dropped.")
		}
	})

	if errors.Is(err, websocket.ErrReadLimit) {
		logger.Warn().Msg("Inbound frame exceeded size limit, closing connection.")
	}

	session.close()
	h.Disconnect(t)
	closeQuietly(logger, t, CloseNormal, "")
}

// Disconnect removes handle from the registry and, if it was registered,
// publishes the new presence snapshot. It reports whether a removal happened.
func (h *Hub) Disconnect(handle Handle) bool {
	identity, ok := h.registry.Remove(handle)
	if !ok {
		return false
	}

	h.logger.Info().
		Str("conn_id", handle.ID()).
		Str("username", identity).
		Int("total_connections", h.registry.Len()).
		Msg("Connection removed.")

	h.broadcaster.PublishPresence()
	return true
}

// OnlineUsers returns the current presence snapshot.
func (h *Hub) OnlineUsers() []string {
	return h.registry.SnapshotIdentities()
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}

// Shutdown closes every live connection and empties the registry.
// New connections are refused afterwards. In-flight frames are not drained.
func (h *Hub) Shutdown() {
	h.shuttingDown.Store(true)

	handles := h.registry.Clear()
	for _, handle := range handles {
		closeQuietly(h.logger, handle, CloseGoingAway, "server shutting down")
	}

	h.logger.Info().Int("closed_connections", len(handles)).Msg("Hub shutdown complete.")
}
