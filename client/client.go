// Package client talks to the document server's authentication endpoints.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/go-authgate/dsc/session"
)

// AuthHeader carries the session token on secured endpoints.
const AuthHeader = "X-Docspell-Auth"

const (
	loginPath        = "/api/v1/open/auth/login"
	twoFactorPath    = "/api/v1/open/auth/two-factor"
	sessionLoginPath = "/api/v1/sec/auth/session"
	collectivePath   = "/api/v1/sec/collective"
)

// Timeout configuration for different operations
const (
	loginTimeout        = 10 * time.Second
	otpTimeout          = 10 * time.Second
	sessionLoginTimeout = 10 * time.Second
	verifyTimeout       = 10 * time.Second
)

// Client is an HTTP client for the server's auth API. It implements
// session.Authenticator.
type Client struct {
	baseURL string
	retry   *retry.Client
	log     zerolog.Logger
}

var _ session.Authenticator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRetryClient replaces the default retrying HTTP client.
func WithRetryClient(rc *retry.Client) Option {
	return func(c *Client) { c.retry = rc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the server at baseURL, e.g. http://localhost:7880.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.retry == nil {
		baseHTTPClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}

		rc, err := retry.NewBackgroundClient(retry.WithHTTPClient(baseHTTPClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create retry client: %w", err)
		}
		c.retry = rc
	}
	return c, nil
}

// Login authenticates with account and password.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.Record, error) {
	reqCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	return c.postRecord(reqCtx, loginPath, "", creds)
}

// LoginOTP completes a login that requires a second factor. token is the
// one returned by the preceding Login.
func (c *Client) LoginOTP(ctx context.Context, token, otp string) (*session.Record, error) {
	reqCtx, cancel := context.WithTimeout(ctx, otpTimeout)
	defer cancel()

	body := struct {
		Token      string `json:"token"`
		OTP        string `json:"otp"`
		RememberMe bool   `json:"rememberMe"`
	}{Token: token, OTP: otp}

	return c.postRecord(reqCtx, twoFactorPath, token, body)
}

// SessionLogin exchanges a valid token for a fresh one.
func (c *Client) SessionLogin(ctx context.Context, token string) (*session.Record, error) {
	reqCtx, cancel := context.WithTimeout(ctx, sessionLoginTimeout)
	defer cancel()

	return c.postRecord(reqCtx, sessionLoginPath, token, nil)
}

// Collective fetches the collective of the authenticated account and
// returns the raw response body. It is used to verify a token end to end.
func (c *Client) Collective(ctx context.Context, src oauth2.TokenSource) (string, error) {
	tok, err := src.Token()
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+collectivePath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set(AuthHeader, tok.AccessToken)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) postRecord(
	ctx context.Context,
	path, token string,
	payload any,
) (*session.Record, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthHeader, token)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rec session.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response from %s: %w", session.ErrTransport, path, err)
	}
	c.log.Debug().
		Str("path", path).
		Bool("success", rec.Success).
		Bool("second_factor", rec.RequireSecondFactor).
		Msg("auth response")
	return &rec, nil
}

// do executes req with retry logic and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	url := req.URL.String()

	resp, err := c.retry.DoWithContext(req.Context(), req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %w", session.ErrTransport, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", session.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf(
			"%w: %s returned status %d: %s",
			session.ErrTransport,
			url,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}
	return body, nil
}
