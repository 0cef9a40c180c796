package relay

import (
	"strings"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

// Gate authenticates new connections and admits them into the Registry.
// Every connection passes through Admit exactly once.
type Gate struct {
	verifier    TokenVerifier
	registry    *Registry
	broadcaster *Broadcaster
	logger      zerolog.Logger
}

// NewGate returns a Gate admitting connections verified by verifier.
func NewGate(verifier TokenVerifier, registry *Registry, broadcaster *Broadcaster) *Gate {
	return &Gate{
		verifier:    verifier,
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logx.Component("Gate"),
	}
}

// Admit verifies token and, on success, registers handle under the verified identity
// and publishes a presence snapshot to every connection, the new one included.
// On failure the handle is closed and nothing is registered or broadcast.
func (g *Gate) Admit(handle Handle, token string) (*Session, *errs.CustomError) {
	session := NewSession(handle)
	logger := g.logger.With().Str("conn_id", handle.ID()).Logger()

	if err := session.beginAuthentication(); err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		logger.Info().Msg("Handshake rejected: missing token.")
		return nil, g.reject(session)
	}

	identity, err := g.verifier.Verify(token)
	if err != nil || identity == "" {
		logger.Info().Err(err).Msg("Handshake rejected: token verification failed.")
		return nil, g.reject(session)
	}

	if insertErr := g.registry.Insert(handle, identity); insertErr != nil {
		logger.Error().Err(insertErr).Str("username", identity).Msg("Registry refused admitted connection.")
		session.close()
		closeQuietly(logger, handle, CloseInternalError, "internal error")
		return nil, errs.NewError(errs.ErrInvariantViolation, insertErr.Message)
	}

	if err := session.authenticate(identity); err != nil {
		logger.Error().Err(err).Msg("Session refused authentication after registry insert.")
	}

	logger.Info().
		Str("username", identity).
		Int("total_connections", g.registry.Len()).
		Msg("Connection admitted.")

	g.broadcaster.PublishPresence()

	return session, nil
}

func (g *Gate) reject(session *Session) *errs.CustomError {
	session.close()
	closeQuietly(g.logger, session.Handle(), CloseUnauthenticated, "unauthenticated")
	return errs.NewError(errs.ErrUnauthenticated)
}

func closeQuietly(logger zerolog.Logger, h Handle, code int, reason string) {
	if err := h.Close(code, reason); err != nil {
		logger.Debug().Err(err).Str("conn_id", h.ID()).Int("close_code", code).Msg("Connection close returned error.")
	}
}
