package relay

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

// Dispatcher decodes inbound frames and routes valid ones to the Broadcaster.
// Invalid frames are dropped; they never close the connection or reach other clients.
type Dispatcher struct {
	registry    *Registry
	broadcaster *Broadcaster
	now         func() time.Time
	logger      zerolog.Logger
}

// NewDispatcher returns a Dispatcher that stamps chat events with the wall clock.
func NewDispatcher(registry *Registry, broadcaster *Broadcaster) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		broadcaster: broadcaster,
		now:         time.Now,
		logger:      logx.Component("Dispatcher"),
	}
}

// Dispatch handles one inbound frame from handle. The returned error describes why
// a frame was dropped and is meant for logging only.
func (d *Dispatcher) Dispatch(handle Handle, frame []byte) *errs.CustomError {
	var inbound inboundFrame
	if err := json.Unmarshal(frame, &inbound); err != nil {
		d.logger.Warn().Err(err).Str("conn_id", handle.ID()).Msg("Client sent invalid JSON.")
		return errs.NewError(errs.ErrMalformedFrame)
	}

	switch inbound.Type {
	case TypeChat:
		return d.handleChat(handle, inbound)
	default:
		d.logger.Debug().Str("conn_id", handle.ID()).Str("msg_type", inbound.Type).Msg("Client sent unsupported frame type.")
		return errs.NewError(errs.ErrUnsupportedFrameType, inbound.Type)
	}
}

func (d *Dispatcher) handleChat(handle Handle, inbound inboundFrame) *errs.CustomError {
	if strings.TrimSpace(inbound.Message) == "" {
		d.logger.Debug().Str("conn_id", handle.ID()).Msg("Client sent empty chat message.")
		return errs.NewError(errs.ErrMalformedFrame)
	}

	sender, ok := d.registry.Identity(handle)
	if !ok {
		d.logger.Warn().Str("conn_id", handle.ID()).Msg("Chat frame from unregistered connection dropped.")
		return errs.NewError(errs.ErrUnauthenticated)
	}

	d.broadcaster.Broadcast(NewChatEvent(sender, inbound.Message, d.now()))
	return nil
}
