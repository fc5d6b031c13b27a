// Package provider talks to the upstream identity provider. It performs the
// two outbound calls of the flow (code exchange, userinfo fetch) and
// classifies their failures so the flow controller can pick an error code
// without inspecting provider responses.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"leagueledger/internal/platform/config"
	"leagueledger/internal/platform/metrics"
)

// Sentinel errors classifying which outbound call failed.
var (
	ErrTokenExchange = errors.New("token exchange failed")
	ErrUserInfo      = errors.New("userinfo request failed")
)

// Identity is the verified identity extracted from the provider.
type Identity struct {
	// Sub is the provider-issued stable subject identifier; it becomes the
	// ledger user id.
	Sub string
	// DisplayName is advisory only and never used as a lookup key.
	DisplayName string
}

// Client is the provider contract consumed by the flow controller.
type Client interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
	FetchUserInfo(ctx context.Context, accessToken string) (Identity, error)
}

// HTTPClient implements Client against a real provider over HTTP. Endpoints
// are taken from configuration so tests can point it at a local server.
type HTTPClient struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewHTTPClient(cfg config.ProviderConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// The provider expects client credentials via HTTP Basic.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL builds the provider's authorization URL carrying the fixed
// flow parameters and the anti-forgery state.
func (c *HTTPClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token. Any failure,
// including timeouts, classifies as ErrTokenExchange.
func (c *HTTPClient) Exchange(ctx context.Context, code string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("exchange").Observe(time.Since(start).Seconds())
	}()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrTokenExchange)
	}
	return token.AccessToken, nil
}

// userInfoResponse holds the claims we read from the userinfo endpoint. The
// display-name claims form an ordered fallback chain.
type userInfoResponse struct {
	Sub               string `json:"sub"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
}

// FetchUserInfo retrieves identity claims with bearer auth. The subject is
// mandatory; a response without it is a provider failure, not a default.
func (c *HTTPClient) FetchUserInfo(ctx context.Context, accessToken string) (Identity, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("userinfo").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: build request: %w", ErrUserInfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode)
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %w", ErrUserInfo, err)
	}
	if info.Sub == "" {
		return Identity{}, fmt.Errorf("%w: response missing sub claim", ErrUserInfo)
	}

	return Identity{Sub: info.Sub, DisplayName: displayName(info)}, nil
}

// displayName picks the first non-empty display-name claim, falling back to
// the subject identifier itself.
func displayName(info userInfoResponse) string {
	for _, candidate := range []string{info.Name, info.PreferredUsername, info.GivenName} {
		if candidate != "" {
			return candidate
		}
	}
	return info.Sub
}
