// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveHashAndVerify(t *testing.T) {
	hash, salt, err := DeriveHash("correct horse battery staple", "")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	assert.True(t, VerifyPassword("correct horse battery staple", hash, salt))
	assert.False(t, VerifyPassword("wrong password", hash, salt))
	assert.False(t, VerifyPassword("", hash, salt))
}

func TestDeriveHashDeterministic(t *testing.T) {
	hash1, salt, err := DeriveHash("secret", "")
	require.NoError(t, err)

	hash2, salt2, err := DeriveHash("secret", salt)
	require.NoError(t, err)

	assert.Equal(t, salt, salt2)
	assert.Equal(t, hash1, hash2)
}

func TestDeriveHashUniqueSalts(t *testing.T) {
	hash1, salt1, err := DeriveHash("secret", "")
	require.NoError(t, err)
	hash2, salt2, err := DeriveHash("secret", "")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPasswordMalformedInput(t *testing.T) {
	// Corrupt hex must be treated as a non-match, never an error or panic
	assert.False(t, VerifyPassword("secret", "not-hex", "also-not-hex"))
	assert.False(t, VerifyPassword("secret", "", ""))

	hash, _, err := DeriveHash("secret", "")
	require.NoError(t, err)
	assert.False(t, VerifyPassword("secret", hash, "zz-bad-salt"))
}

func TestDeriveHashBadSalt(t *testing.T) {
	_, _, err := DeriveHash("secret", "not hex at all")
	require.Error(t, err)
}
