package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "cyrillic password", password: "пароль-надёжный"},
		{name: "minimal length", password: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			ok, err := Matches(hash, tt.password)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestGetHash_SaltedHashesDiffer(t *testing.T) {
	h1, err := GetHash("password123")
	require.NoError(t, err)
	h2, err := GetHash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestMatches(t *testing.T) {
	hash, err := GetHash("correct-password")
	require.NoError(t, err)

	ok, err := Matches(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Matches("not-a-bcrypt-hash", "correct-password")
	assert.Error(t, err)
	assert.False(t, ok)
}
