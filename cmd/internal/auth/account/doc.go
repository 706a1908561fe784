// Package account orchestrates registration and login.
//
// Registration validates the form, hashes the password with bcrypt, inserts
// the user through the insert-only users role and opens a session. Login
// looks the user up through the read-only users role, verifies the password
// and opens a session. Both failure modes of login (unknown email, wrong
// password) return the same ErrInvalidCredentials no earlier than LoginFloor
// after the lookup began.
package account
