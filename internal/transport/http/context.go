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

package http

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userNameKey contextKey = "user_name"
	tokenKey    contextKey = "token"
)

// GetUserID retrieves the authenticated user's ID from context.
func GetUserID(ctx context.Context) int64 {
	if val, ok := ctx.Value(userIDKey).(int64); ok {
		return val
	}
	return 0
}

// GetUserName retrieves the authenticated user's name from context.
func GetUserName(ctx context.Context) string {
	if val, ok := ctx.Value(userNameKey).(string); ok {
		return val
	}
	return ""
}

// GetToken retrieves the session token the request authenticated with.
func GetToken(ctx context.Context) string {
	if val, ok := ctx.Value(tokenKey).(string); ok {
		return val
	}
	return ""
}
