package handler

import (
	"relaychat/internal/app/relay"
	"relaychat/internal/app/user"
	"relaychat/internal/configs"
)

// AppDeps holds the dependencies shared by all handlers.
type AppDeps struct {
	Hub    *relay.Hub
	Config *configs.AppConfig

	// Users is nil when no database is configured; the credential endpoints
	// then answer ErrAuthUnavailable.
	Users user.Store
}
