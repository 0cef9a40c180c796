package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

// Broadcaster serializes outbound events once and delivers the same bytes to every
// registered connection. Delivery is best-effort and independent per connection.
type Broadcaster struct {
	registry *Registry

	// presenceMu serializes presence snapshots with their fan-out, so that
	// connections never receive an older snapshot after a newer one.
	presenceMu sync.Mutex

	logger zerolog.Logger
}

// NewBroadcaster returns a Broadcaster delivering to the handles in registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logx.Component("Broadcaster"),
	}
}

// Broadcast delivers event to every registered connection, the sender included.
func (b *Broadcaster) Broadcast(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error marshaling event for broadcast.")
		return
	}

	failed := b.fanOut(payload)
	b.dropFailed(failed)
}

// PublishPresence broadcasts the current presence snapshot to every registered connection.
func (b *Broadcaster) PublishPresence() {
	b.presenceMu.Lock()

	users := b.registry.SnapshotIdentities()
	payload, err := json.Marshal(NewPresenceEvent(users))
	if err != nil {
		b.presenceMu.Unlock()
		b.logger.Error().Err(err).Msg("Error marshaling presence snapshot.")
		return
	}

	failed := b.fanOut(payload)
	b.presenceMu.Unlock()

	b.logger.Debug().Strs("users", users).Int("failed", len(failed)).Msg("Presence snapshot published.")

	b.dropFailed(failed)
}

// fanOut sends payload to every registered handle and returns those that failed.
func (b *Broadcaster) fanOut(payload []byte) []Handle {
	var failed []Handle

	b.registry.ForEachHandle(func(h Handle) {
		if err := h.Send(payload); err != nil {
			b.logger.Warn().
				Str("conn_id", h.ID()).
				Err(err).
				Msg("Send failed, scheduling connection removal.")
			failed = append(failed, h)
		}
	})

	return failed
}

// dropFailed removes and closes every failed handle, then publishes a single
// presence snapshot if any of them was still registered.
func (b *Broadcaster) dropFailed(failed []Handle) {
	if len(failed) == 0 {
		return
	}

	removed := 0
	for _, h := range failed {
		if identity, ok := b.registry.Remove(h); ok {
			removed++
			b.logger.Info().
				Str("conn_id", h.ID()).
				Str("username", identity).
				Msg("Connection removed after send failure.")
		}

		if err := h.Close(CloseSendFailed, "send failed"); err != nil {
			b.logger.Debug().Str("conn_id", h.ID()).Err(err).Msg("Close after send failure returned error.")
		}
	}

	if removed > 0 {
		b.PublishPresence()
	}
}
