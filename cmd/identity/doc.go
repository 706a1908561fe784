// Package identity is quill's credential store.
//
// It persists user identity (name, email, bcrypt hash) through the
// least-privilege gateway handles: lookups use the read-only users role and
// registration uses the insert-only users role. Email uniqueness is enforced
// by the database and surfaced as a ConflictError on the "email" field.
package identity
