// Package password hashes and verifies user passwords for quill.
//
// Hashing uses bcrypt with a tunable cost (10 by default). The package also
// owns the registration strength rules; Check reports every rule a candidate
// password fails so the caller can show all of them at once.
package password
