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
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqconsole/mqconsole/internal/token"
)

func testRepository(t *testing.T) *TokenRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewTokenRepository(client)
}

func TestTokenRepository_SetAndGet(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "session-1", "token-a"))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "token-a", got)
}

func TestTokenRepository_SetOverwrites(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "session-1", "token-a"))
	require.NoError(t, repo.Set(ctx, "session-1", "token-b"))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "token-b", got)
}

func TestTokenRepository_GetMissing(t *testing.T) {
	repo := testRepository(t)

	_, err := repo.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, token.ErrTokenNotFound)
}

func TestTokenRepository_KeysAreIsolated(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "session-1", "token-a"))
	require.NoError(t, repo.Set(ctx, "session-2", "token-b"))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "token-a", got)

	got, err = repo.Get(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, "token-b", got)
}
