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

package federation

import (
	"context"
	"errors"
)

// Domain errors
var (
	ErrAuthenticationFailed = errors.New("authentication failed, please check carefully")
)

// Profile is the identity reported by the external provider after a
// successful token exchange.
type Profile struct {
	Name        string
	AccessToken string
	Email       string
	Company     string
	Location    string
}

// Provider abstracts the external identity provider. The token-exchange
// wire protocol is the provider's concern; only the resulting access token
// and profile surface here.
type Provider interface {
	// ExchangeCode trades an authorization code for a provider access token
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchProfile retrieves the external user profile for an access token
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
