package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/storage"
)

// refreshPath is the token exchange endpoint. Requests under authPathPrefix
// never enter 401 recovery: a 401 from login or register means bad
// credentials, not an expired session.
const (
	refreshPath    = "/api/auth/refresh"
	authPathPrefix = "/api/auth/"
)

// retriedKey marks a request that has already been through one
// refresh-and-retry cycle. The marker lives on the request's own context, so
// concurrent requests cannot interfere with each other's retry budget.
type retriedKey struct{}

// authTransport attaches the stored access token to every outbound request
// and recovers a 401 with a single silent refresh.
type authTransport struct {
	client *Client
	next   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	outbound := req.Clone(ctx)
	if token, err := t.client.storage.Get(ctx, storage.KeyAccessToken); err == nil && token != "" {
		outbound.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.next.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if strings.HasPrefix(req.URL.Path, authPathPrefix) {
		return resp, nil
	}
	if ctx.Value(retriedKey{}) != nil {
		// Already retried once; the refreshed token was rejected too.
		t.client.expireSession(ctx)
		return resp, nil
	}

	token, refreshErr := t.client.refreshAccessToken(ctx)
	if refreshErr != nil {
		t.client.expireSession(ctx)
		return resp, nil
	}

	retry, rewindErr := rewind(req)
	if rewindErr != nil {
		return resp, nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry = retry.WithContext(context.WithValue(ctx, retriedKey{}, true))
	retry.Header.Set("Authorization", "Bearer "+token)
	return t.next.RoundTrip(retry)
}

// rewind clones a request with a replayable body for the retry attempt.
func rewind(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	retry.Body = body
	return retry, nil
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. Concurrent callers share one in-flight exchange.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	value, err, _ := c.refresh.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken, err := c.storage.Get(ctx, storage.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("failed to read refresh token: %w", err)
		}
		return "", ErrSessionExpired
	}

	if c.metrics != nil {
		c.metrics.RefreshAttemptsTotal.Inc()
	}

	payload, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base.JoinPath(refreshPath).String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		c.countRefreshFailure()
		return "", fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.countRefreshFailure()
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if err := env.Err(resp.StatusCode); err != nil {
		c.countRefreshFailure()
		return "", fmt.Errorf("token refresh rejected: %w", err)
	}

	var out api.RefreshResponse
	if err := env.Decode(&out); err != nil {
		c.countRefreshFailure()
		return "", err
	}
	if out.AccessToken == "" {
		c.countRefreshFailure()
		return "", fmt.Errorf("refresh response contained no access token")
	}

	if err := c.storage.Set(ctx, storage.KeyAccessToken, out.AccessToken); err != nil {
		return "", fmt.Errorf("failed to persist refreshed access token: %w", err)
	}
	c.logger.Debug("access token refreshed")
	return out.AccessToken, nil
}

func (c *Client) countRefreshFailure() {
	if c.metrics != nil {
		c.metrics.RefreshFailuresTotal.Inc()
	}
}

// expireSession purges all persisted credentials and notifies the configured
// session-expiry hook. Safe to call repeatedly.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.storage.Delete(ctx,
		storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyAuthStorage); err != nil {
		c.logger.WithError(err).Warn("failed to purge credentials")
	}
	if c.metrics != nil {
		c.metrics.SessionExpiredTotal.Inc()
	}
	c.logger.Info("session expired, credentials purged")
	if c.onExpired != nil {
		c.onExpired()
	}
}
