// ABOUTME: Tests for viewer credential verification
// ABOUTME: Covers plaintext and pre-hashed secrets, mismatches, and bad configuration

package auth

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	hashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestCredentials_Plaintext(t *testing.T) {
	creds, err := NewCredentials("admin@example.com", "hunter2", "")
	require.NoError(t, err)

	assert.True(t, creds.Verify("admin@example.com", "hunter2"))
	assert.False(t, creds.Verify("admin@example.com", "hunter3"))
	assert.False(t, creds.Verify("other@example.com", "hunter2"))
	assert.False(t, creds.Verify("", ""))
	assert.False(t, creds.Verify("Admin@example.com", "hunter2"), "username is case-sensitive")
}

func TestCredentials_PasswordHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("from-hash"), bcrypt.MinCost)
	require.NoError(t, err)

	creds, err := NewCredentials("admin", "ignored", string(hash))
	require.NoError(t, err)

	assert.True(t, creds.Verify("admin", "from-hash"))
	assert.False(t, creds.Verify("admin", "ignored"))
}

func TestCredentials_Invalid(t *testing.T) {
	tests := []struct {
		name, user, pass, hash string
	}{
		{"no username", "", "secret", ""},
		{"no secret", "admin", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCredentials(tt.user, tt.pass, tt.hash)
			assert.ErrorIs(t, err, ErrNoCredentials)
		})
	}

	_, err := NewCredentials("admin", "", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid password hash")
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	creds, err := NewCredentials("admin", "", hash)
	require.NoError(t, err)
	assert.True(t, creds.Verify("admin", "s3cret"))

	_, err = HashPassword("")
	assert.Error(t, err)
}
