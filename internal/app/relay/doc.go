/*
Package relay is the connection registry and broadcast engine of RelayChat.

A connection enters through the Gate, which verifies its handshake token and admits
it into the Registry. The Dispatcher turns inbound frames into chat events, and the
Broadcaster fans every event out to all registered connections. Presence snapshots
are broadcast whenever the set of registered connections changes. Hub wires the
pieces together and drives one connection from handshake to disconnect.
*/
package relay
