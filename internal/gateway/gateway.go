// ABOUTME: Resilient HTTP gateway for all platform requests
// ABOUTME: Coordinates a single-flight token refresh shared by concurrent 401s

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/loco-dev/loco-client/internal/api"
	"github.com/loco-dev/loco-client/internal/session"
)

// refreshKey is the singleflight key: there is exactly one refresh operation
// per client, so every concurrent 401 joins the same call.
const refreshKey = "refresh"

// ErrRefreshFailed wraps the refresh endpoint's error when a session could not
// be renewed. It is always accompanied by a forced session clear.
var ErrRefreshFailed = errors.New("session refresh failed")

// Request describes one outbound API call.
type Request struct {
	Method string
	Path   string
	Body   any

	// retried marks that the request already consumed its one replay.
	retried bool
}

// Response is a completed API call with its body fully read.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Client sends requests to the platform and recovers from session expiry.
// Credentials are cookie-based; the embedded jar carries the auth cookies the
// server sets on login and refresh.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	group   singleflight.Group
	logger  *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Session *session.Store
	Logger  *slog.Logger

	// Transport overrides the default transport, used by tests.
	Transport http.RoundTripper
}

// New creates a gateway client. The session store is required; it is the only
// component the gateway mutates on refresh outcomes.
func New(opts Options) (*Client, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Jar:       jar,
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		session: opts.Session,
		logger:  logger.With("component", "gateway"),
	}, nil
}

// HTTPClient exposes the underlying client so the notification stream can
// share the cookie jar. The returned client must not be mutated.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// BaseURL returns the configured API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request and applies the 401 recovery policy:
//
//   - Auth endpoints never trigger a refresh. A 401 from the refresh endpoint
//     itself clears the session.
//   - The first 401 on a non-auth endpoint joins the single in-flight refresh
//     (starting it if none is running) and, on success, replays the original
//     request exactly once.
//   - A request that already consumed its replay propagates the 401 as-is.
//   - Refresh failure clears the session and surfaces the refresh error, not
//     the original request's.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return c.finish(resp)
	}

	if api.IsAuthEndpoint(req.Path) {
		c.logger.Debug("auth endpoint rejected, not retrying", "path", req.Path)
		if req.Path == api.EndpointRefresh {
			c.session.Clear()
		}
		return c.finish(resp)
	}

	if req.retried {
		c.logger.Debug("retry budget exhausted", "path", req.Path)
		return c.finish(resp)
	}
	req.retried = true

	c.logger.Info("session expired, refreshing", "path", req.Path)
	if err := c.refreshShared(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("refresh succeeded, replaying request", "path", req.Path)
	replay, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.finish(replay)
}

// refreshShared joins the process-wide refresh call. Concurrent callers share
// one POST /auth/refresh; each replays its own original request afterwards.
// The shared call fully completes before any caller proceeds, so a replay
// never races a still-invalid token.
func (c *Client) refreshShared(ctx context.Context) error {
	_, err, shared := c.group.Do(refreshKey, func() (any, error) {
		resp, err := c.send(ctx, &Request{Method: http.MethodPost, Path: api.EndpointRefresh})
		if err != nil {
			c.session.Clear()
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.session.Clear()
			apiErr := api.ParseError(resp.StatusCode, resp.Body)
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, apiErr)
		}
		return nil, nil
	})
	if shared {
		c.logger.Debug("joined in-flight refresh")
	}
	return err
}

// send performs one HTTP round trip and reads the full body. No retry logic
// lives here.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}

// finish converts failure statuses into *api.Error and passes successes through.
func (c *Client) finish(resp *Response) (*Response, error) {
	if resp.StatusCode >= 400 {
		return nil, api.ParseError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}
