// Package realtime pushes post activity to connected browsers.
//
// A Hub fans events out to every subscribed Client. WSGateway upgrades
// authenticated requests on /ws/feed to websocket sessions speaking the
// quill.feed.v1 subprotocol: the server sends JSON events, the client may
// only send pings.
package realtime
