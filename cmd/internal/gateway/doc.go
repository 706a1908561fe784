// Package gateway is the only path from quill to Postgres.
//
// Every operation runs against a pool whose database role holds the minimum
// privileges that operation needs. Each privilege class is exposed as its own
// handle type (ReadOnlyPosts, DeletePosts, ...), so a read path cannot reach a
// delete statement without the compiler noticing.
//
// Statements are prepared by name on every new connection of the owning pool
// and executed by that name; the SQL text lives only in statements.go.
package gateway
