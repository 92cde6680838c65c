// Copyright 2026 The MQConsole Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Domain errors
var (
	ErrTokenNotFound = errors.New("token not found")
)

// Repository defines the interface for session-key to token bindings
type Repository interface {
	// Set associates a session key with a token, last-write-wins
	Set(ctx context.Context, sessionKey, token string) error

	// Get retrieves the token bound to a session key
	Get(ctx context.Context, sessionKey string) (string, error)
}

// Service issues session tokens and binds them to session keys. Expiry is
// not handled at this layer.
type Service struct {
	repo       Repository
	signingKey []byte
}

// NewService creates a new token service. The HMAC signing key is derived
// from secret with HKDF so the raw configuration value never signs
// anything directly.
func NewService(repo Repository, secret string) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("mqconsole-session-token"))
	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &Service{repo: repo, signingKey: signingKey}, nil
}

// ToToken derives a session token from seed. The token is an HS256-signed
// JWT whose subject is the SHA-256 of the seed: unforgeable without the
// signing key and not reversible to the seed. Callers mix a timestamp into
// the seed, so repeat logins with the same upstream credential still yield
// distinct tokens.
func (s *Service) ToToken(seed string) (string, error) {
	sum := sha256.Sum256([]byte(seed))

	claims := jwt.MapClaims{
		"sub": hex.EncodeToString(sum[:]),
		"iat": time.Now().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses a token and returns its subject. Used by tests and
// diagnostic tooling; request authentication resolves tokens through the
// identity store instead.
func (s *Service) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("failed to read subject: %w", err)
	}

	return sub, nil
}

// SetToken binds token to sessionKey. Storage failures propagate unchanged.
func (s *Service) SetToken(ctx context.Context, sessionKey, token string) error {
	return s.repo.Set(ctx, sessionKey, token)
}

// GetToken looks up the token bound to sessionKey
func (s *Service) GetToken(ctx context.Context, sessionKey string) (string, error) {
	return s.repo.Get(ctx, sessionKey)
}
