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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// CallbackPath is the route GitHub redirects to after authorization
const CallbackPath = "/mqconsole/third-party-login/callback/github"

// GitHubConfig holds third-party login configuration for GitHub
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	LoginHost    string
	RedirectHost string
	APIHost      string
}

// GitHubProvider implements Provider against the GitHub OAuth app flow
type GitHubProvider struct {
	oauth      *oauth2.Config
	cfg        GitHubConfig
	httpClient *http.Client
}

// NewGitHubProvider creates a GitHub identity provider
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     githuboauth.Endpoint,
			RedirectURL:  cfg.RedirectHost + CallbackPath,
			Scopes:       []string{"read:org"},
		},
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LoginURL builds the GitHub authorization URL the browser is redirected
// to. The callback is percent-encoded into the redirect_uri parameter.
func (p *GitHubProvider) LoginURL() string {
	return p.cfg.LoginHost +
		"?access_type=online&client_id=" + p.cfg.ClientID +
		"&scope=read:org&redirect_uri=" +
		url.QueryEscape(p.cfg.RedirectHost+CallbackPath)
}

// ExchangeCode trades an authorization code for a GitHub access token
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok.AccessToken, nil
}

// githubUser is the subset of the GitHub user API response we consume
type githubUser struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// FetchProfile retrieves the authenticated user's profile. A rejected or
// unresolvable token yields ErrAuthenticationFailed.
func (p *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIHost+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrAuthenticationFailed
	}

	var gu githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if gu.Login == "" {
		return nil, ErrAuthenticationFailed
	}

	return &Profile{
		Name:        gu.Login,
		AccessToken: accessToken,
		Email:       gu.Email,
		Company:     gu.Company,
		Location:    gu.Location,
	}, nil
}
