// Package session implements quill's server-side session lifecycle.
//
// A session is an opaque 128-bit random token bound to a user id. The client
// holds the token in the sessionId cookie; the database only stores its digest
// (HMAC-SHA256 when QUILL_TOKEN_HMAC_KEY is set, SHA-256 otherwise). A session
// is active while now - created_at <= TTL and expiry is evaluated on every
// read. There is no sliding expiration.
//
// Reads, inserts and deletes go through three separately privileged gateway
// handles.
package session
