// Package token hashes opaque session tokens before they reach the database.
//
// The sessions table never sees a client token, only its digest:
// HMAC-SHA256 when QUILL_TOKEN_HMAC_KEY is set, SHA-256 otherwise.
// Output is always 64 hex chars.
//
// When the server runs with QUILL_REQUIRE_TOKEN_HMAC=true, the key must be at
// least 32 bytes and the SHA-256 fallback is refused.
package token
