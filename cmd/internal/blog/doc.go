// Package blog serves the post listing, post pages, the editor and comments.
//
// Reads go through the read-only posts handle; creates and edits through the
// insert/update handle; deletes through the delete handle. Edits and deletes
// are filtered by owner in SQL, so a non-owner request changes nothing.
package blog
