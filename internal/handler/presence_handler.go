package handler

import (
	"net/http"

	"relaychat/internal/pkg/auth/jwt"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/resp"
)

// HandlePresence returns the identities currently online and the number of live connections.
// It requires a valid bearer token.
func HandlePresence(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users":       deps.Hub.OnlineUsers(),
			"connections": deps.Hub.ConnectionCount(),
		})
	}
}
