package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/auth/jwt"
	"relaychat/internal/pkg/logx"
)

// HandleWebSocket upgrades the request and hands the connection to the relay hub.
// The token is read from the "token" query parameter, falling back to the
// Authorization header. It is verified after the upgrade so that a rejection
// reaches the client as close code 4401.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = jwt.BearerToken(r)
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		conn := relay.NewConn(ws, relay.ConnOptions{
			SendQueueSize: deps.Config.SendQueueSize,
			MaxFrameBytes: deps.Config.MaxFrameBytes,
		})

		go conn.WritePump()

		deps.Hub.Serve(conn, token)
	}
}
