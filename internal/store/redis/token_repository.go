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

package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mqconsole/mqconsole/internal/token"
)

const tokenKeyPrefix = "mqconsole:session_token:"

// TokenRepository implements token.Repository backed by Redis
type TokenRepository struct {
	client *redis.Client
}

// NewTokenRepository creates a new Redis token repository
func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

// Set binds token to sessionKey. A later Set for the same key overwrites
// the earlier one. Bindings do not expire; logout and token rotation are
// the only invalidation paths.
func (r *TokenRepository) Set(ctx context.Context, sessionKey, tok string) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+sessionKey, tok, 0).Err(); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Get retrieves the token bound to sessionKey
func (r *TokenRepository) Get(ctx context.Context, sessionKey string) (string, error) {
	val, err := r.client.Get(ctx, tokenKeyPrefix+sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", token.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load session token: %w", err)
	}
	return val, nil
}
