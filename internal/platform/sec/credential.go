// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec holds the security primitives of HelpHub: stored credentials and
opaque session tokens.

A [Credential] wraps a bcrypt hash. It is created from a plain secret once,
never reversed, and compared only through [Credential.Verify], which relies on
bcrypt's constant-time comparison.
*/
package sec

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/helphub/internal/platform/apperr"
)

// DefaultCost is the bcrypt work factor for new credentials.
const DefaultCost = 10

// Credential is an immutable bcrypt hash of an account secret.
//
// The zero value holds no hash and never verifies.
type Credential struct {
	hash string
}

// NewCredential hashes secret with [DefaultCost].
func NewCredential(secret string) (Credential, error) {
	return NewCredentialWithCost(secret, DefaultCost)
}

/*
NewCredentialWithCost hashes secret with an explicit bcrypt cost.

Parameters:
  - secret: string (plain text, must not be empty)
  - cost: int (bcrypt.MinCost..bcrypt.MaxCost)

Returns:
  - Credential: the hashed credential
  - error: VALIDATION_ERROR for an empty or over-long secret
*/
func NewCredentialWithCost(secret string, cost int) (Credential, error) {
	if secret == "" {
		return Credential{}, apperr.ValidationError("Secret must be a non-empty string")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Credential{}, apperr.ValidationError("Secret must be at most 72 bytes")
		}
		return Credential{}, fmt.Errorf("sec_credential_hash_failed: %w", err)
	}

	return Credential{hash: string(hashed)}, nil
}

// CredentialFromHash rebuilds a credential from a stored hash.
func CredentialFromHash(raw string) (Credential, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Credential{}, apperr.ValidationError("Credential hash must be a non-empty string")
	}
	return Credential{hash: trimmed}, nil
}

// Verify reports whether secret matches the stored hash.
func (credential Credential) Verify(secret string) bool {
	if credential.hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(credential.hash), []byte(secret)) == nil
}

// Hash returns the encoded bcrypt hash for persistence.
func (credential Credential) Hash() string { return credential.hash }

// IsZero reports whether the credential holds no hash.
func (credential Credential) IsZero() bool { return credential.hash == "" }

// String never prints the hash.
func (credential Credential) String() string { return "[credential]" }

// dummyHash is compared against when an account does not exist, so a failed
// login costs the same whether or not the username is known.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("helphub-timing-equaliser"), DefaultCost)

// BurnVerify performs a bcrypt comparison whose result is discarded.
func BurnVerify(secret string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
}
