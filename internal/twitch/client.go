// Package twitch talks to the Twitch identity provider: it builds
// authorize URLs and exchanges/validates tokens for the dashboard
// login flow. Delivering authorization codes to applications never
// goes through this package; applications exchange their own codes.
package twitch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const baseURL = "https://id.twitch.tv"

const (
	authorizePath = "/oauth2/authorize"
	tokenPath     = "/oauth2/token"
	validatePath  = "/oauth2/validate"

	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads to prevent a
	// misbehaving upstream from consuming unbounded memory.
	maxResponseBytes = 1024 * 1024
)

// AuthorizeURL builds the provider authorize URL for the given client,
// redirect target, space- or plus-separated scopes and state token.
func AuthorizeURL(clientID, redirectURI, scopes, state string, force bool) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", scopes)
	params.Set("force_verify", strconv.FormatBool(force))
	params.Set("state", state)

	return baseURL + authorizePath + "?" + params.Encode()
}

// Token is the provider response to a code exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Identity is the provider response to a token validation.
type Identity struct {
	UserID string
	Login  string
}

// Client exchanges and validates tokens against the Twitch API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

// NewClient creates a provider client with the given http.Client.
// If httpClient is nil, a client with a 30-second timeout is created.
func NewClient(httpClient *http.Client, clientID, clientSecret string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Exchange swaps an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	token := gjson.GetBytes(body, "access_token").Str
	if token == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &Token{
		AccessToken:  token,
		RefreshToken: gjson.GetBytes(body, "refresh_token").Str,
		ExpiresIn:    int(gjson.GetBytes(body, "expires_in").Int()),
	}, nil
}

// Validate resolves an access token to the identity it belongs to.
func (c *Client) Validate(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+validatePath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating validate request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	userID := gjson.GetBytes(body, "user_id").Str
	if userID == "" {
		return nil, fmt.Errorf("validate response missing user_id")
	}

	return &Identity{
		UserID: userID,
		Login:  gjson.GetBytes(body, "login").Str,
	}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return body, nil
}
