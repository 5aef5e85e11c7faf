// ABOUTME: Single shared credential pair for the transcript viewer
// ABOUTME: Usernames compare in constant time via SHA-256 digests; passwords via bcrypt

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoCredentials is returned when the username or secret is missing.
var ErrNoCredentials = errors.New("username and password or password hash are required")

// hashCost is the bcrypt cost used when hashing a plaintext password at startup.
var hashCost = bcrypt.DefaultCost

// Verifier checks a presented username and password.
type Verifier interface {
	Verify(username, password string) bool
}

// Credentials is the configured identifier/secret pair. The plaintext password
// is never retained.
type Credentials struct {
	usernameDigest [sha256.Size]byte
	passwordHash   []byte
}

// NewCredentials builds Credentials from config. A non-empty passwordHash must be
// a bcrypt hash and takes precedence over password.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	if username == "" || (password == "" && passwordHash == "") {
		return nil, ErrNoCredentials
	}

	var hash []byte
	if passwordHash != "" {
		hash = []byte(passwordHash)
		if _, err := bcrypt.Cost(hash); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
	} else {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), hashCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	return &Credentials{
		usernameDigest: sha256.Sum256([]byte(username)),
		passwordHash:   hash,
	}, nil
}

// HashPassword returns a bcrypt hash suitable for viewer.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether username and password both match. The bcrypt
// comparison always runs so a wrong username costs the same as a wrong password.
func (c *Credentials) Verify(username, password string) bool {
	presented := sha256.Sum256([]byte(username))
	userOK := subtle.ConstantTimeCompare(presented[:], c.usernameDigest[:]) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
