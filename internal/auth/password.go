// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package auth provides password hashing, verification, and management of
// the single administrative credential record.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters (OWASP recommendation for PBKDF2-HMAC-SHA512).
const (
	PBKDF2Iterations = 210_000
	PBKDF2KeyLen     = 64
	PBKDF2SaltLen    = 16
)

// DeriveHash derives a hex-encoded PBKDF2-SHA512 digest of the password.
// A random salt is generated when saltHex is empty. Deterministic for the
// same password and salt.
func DeriveHash(password, saltHex string) (hash, salt string, err error) {
	var saltBytes []byte
	if saltHex == "" {
		saltBytes = make([]byte, PBKDF2SaltLen)
		if _, err := rand.Read(saltBytes); err != nil {
			return "", "", fmt.Errorf("generating salt: %w", err)
		}
	} else {
		saltBytes, err = hex.DecodeString(saltHex)
		if err != nil {
			return "", "", fmt.Errorf("decoding salt: %w", err)
		}
	}

	key := pbkdf2.Key([]byte(password), saltBytes, PBKDF2Iterations, PBKDF2KeyLen, sha512.New)
	return hex.EncodeToString(key), hex.EncodeToString(saltBytes), nil
}

// VerifyPassword recomputes the digest for the candidate password and
// compares it in constant time. Any decoding failure is treated as a
// non-match, never propagated.
func VerifyPassword(password, hashHex, saltHex string) bool {
	expected, err := hex.DecodeString(hashHex)
	if err != nil || len(expected) == 0 {
		return false
	}
	saltBytes, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	key := pbkdf2.Key([]byte(password), saltBytes, PBKDF2Iterations, len(expected), sha512.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
