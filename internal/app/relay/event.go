package relay

import "time"

// Frame types on the wire.
const (
	TypeChat  = "chat"
	TypeUsers = "users"
)

// ChatEvent is a chat message as broadcast to every connection.
type ChatEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewChatEvent builds a ChatEvent from sender with a server-side timestamp.
func NewChatEvent(sender, message string, at time.Time) ChatEvent {
	return ChatEvent{
		Type:      TypeChat,
		Username:  sender,
		Message:   message,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// PresenceEvent lists the distinct identities currently online.
type PresenceEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// NewPresenceEvent builds a PresenceEvent. A nil slice is sent as an empty list.
func NewPresenceEvent(users []string) PresenceEvent {
	if users == nil {
		users = []string{}
	}
	return PresenceEvent{Type: TypeUsers, Users: users}
}

// inboundFrame is the client-to-server message shape.
type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
