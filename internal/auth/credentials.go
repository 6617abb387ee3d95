// Package auth implements credential verification and session tokens for the
// single-tenant login.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input beyond 72 bytes, so longer passwords must be cut to
// the same prefix at enrollment and verification or long passwords silently
// stop authenticating.
const maxPasswordBytes = 72

// CredentialStore verifies login credentials and answers whether a username
// is still enrolled. Removing a user is the revocation mechanism for
// already-issued session tokens, so the auth gate re-checks Exists on every
// request.
type CredentialStore interface {
	// Verify reports whether the plaintext password matches the stored hash
	// for username. Unknown usernames verify false.
	Verify(username, password string) bool

	// Exists reports whether username is currently enrolled.
	Exists(username string) bool
}

// MemoryCredentials is an in-memory CredentialStore holding bcrypt hashes.
// It is seeded once at process start and read-only afterwards, so no lock
// guards the map.
type MemoryCredentials struct {
	users map[string][]byte
}

// NewMemoryCredentials creates an empty in-memory credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{users: make(map[string][]byte)}
}

// Add enrolls a username with a bcrypt hash of the password.
func (c *MemoryCredentials) Add(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword(truncateSecret(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	c.users[username] = hash
	return nil
}

// Remove drops a username from the store, revoking future logins and any
// unexpired session tokens bearing that subject.
func (c *MemoryCredentials) Remove(username string) {
	delete(c.users, username)
}

// Verify implements CredentialStore.
func (c *MemoryCredentials) Verify(username, password string) bool {
	hash, ok := c.users[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, truncateSecret(password)) == nil
}

// Exists implements CredentialStore.
func (c *MemoryCredentials) Exists(username string) bool {
	_, ok := c.users[username]
	return ok
}

func truncateSecret(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
