package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/relay"
)

type wireEvent struct {
	Type      string   `json:"type"`
	Username  string   `json:"username"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Users     []string `json:"users"`
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	ws, res, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	res.Body.Close()
	t.Cleanup(func() { ws.Close() })

	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) wireEvent {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)

	var ev wireEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

// readPresence skips chat events until a presence snapshot with want arrives.
func readPresence(t *testing.T, ws *websocket.Conn, want []string) {
	t.Helper()

	for {
		ev := readEvent(t, ws)
		if ev.Type == relay.TypeUsers && assert.ObjectsAreEqual(want, ev.Users) {
			return
		}
	}
}

func TestWebSocket_AdmitsValidToken(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	ws := dial(t, srv, tokenFor(t, "alice"))

	ev := readEvent(t, ws)
	assert.Equal(t, relay.TypeUsers, ev.Type)
	assert.Equal(t, []string{"alice"}, ev.Users)
	assert.Equal(t, 1, deps.Hub.ConnectionCount())
}

func TestWebSocket_BearerHeaderFallback(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tokenFor(t, "carol"))

	ws, res, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	require.NoError(t, err)
	res.Body.Close()
	defer ws.Close()

	ev := readEvent(t, ws)
	assert.Equal(t, []string{"carol"}, ev.Users)
}

func TestWebSocket_RejectsInvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "missing", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, deps := newTestServer(t, nil)

			ws := dial(t, srv, tt.token)

			require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
			_, _, err := ws.ReadMessage()
			require.Error(t, err)
			assert.True(t, websocket.IsCloseError(err, relay.CloseUnauthenticated), "got %v", err)
			assert.Equal(t, 0, deps.Hub.ConnectionCount())
		})
	}
}

func TestWebSocket_ChatFanOutAndPresence(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	alice := dial(t, srv, tokenFor(t, "alice"))
	readPresence(t, alice, []string{"alice"})

	bob := dial(t, srv, tokenFor(t, "bob"))
	readPresence(t, bob, []string{"alice", "bob"})
	readPresence(t, alice, []string{"alice", "bob"})

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","message":"hello bob"}`)))

	for _, ws := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, ws)
		assert.Equal(t, relay.TypeChat, ev.Type)
		assert.Equal(t, "alice", ev.Username)
		assert.Equal(t, "hello bob", ev.Message)

		_, err := time.Parse(time.RFC3339, ev.Timestamp)
		assert.NoError(t, err)
	}

	// malformed frames are dropped without closing the connection
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","message":"still here"}`)))
	ev := readEvent(t, alice)
	assert.Equal(t, "bob", ev.Username)
	assert.Equal(t, "still here", ev.Message)

	require.NoError(t, bob.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	readPresence(t, alice, []string{"alice"})

	require.Eventually(t, func() bool { return deps.Hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_OversizedFrameClosesConnection(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	alice := dial(t, srv, tokenFor(t, "alice"))
	readPresence(t, alice, []string{"alice"})

	big := `{"type":"chat","message":"` + strings.Repeat("x", 2048) + `"}`
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(big)))

	require.Eventually(t, func() bool { return deps.Hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_ShutdownClosesWithGoingAway(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	alice := dial(t, srv, tokenFor(t, "alice"))
	readPresence(t, alice, []string{"alice"})

	deps.Hub.Shutdown()

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := alice.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
