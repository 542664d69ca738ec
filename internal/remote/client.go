// Package remote talks to a running chess server: JSON calls over
// fasthttp and a websocket watcher for live updates.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/chessrules/pkg/chessdto"
)

// HeaderProvider allows injecting per-request headers.
type HeaderProvider func() map[string]string

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	chessdto.DomainError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chess api error: status=%d %s", e.Status, e.DomainError.Error())
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateGame(ctx context.Context, req chessdto.CreateGameRequest) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games", req, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) State(ctx context.Context, id string) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/games/"+url.PathEscape(id), nil, &st, true); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) LegalMoves(ctx context.Context, id, from string) (*chessdto.LegalMovesResponse, error) {
	var resp chessdto.LegalMovesResponse
	path := "/games/" + url.PathEscape(id) + "/moves?from=" + url.QueryEscape(from)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Move(ctx context.Context, id string, req chessdto.MoveRequest) (*chessdto.MoveResponse, error) {
	var resp chessdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games/"+url.PathEscape(id)+"/move", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Rewind(ctx context.Context, id, playerID string) (*chessdto.MoveResponse, error) {
	var resp chessdto.MoveResponse
	req := chessdto.RewindRequest{PlayerID: playerID}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games/"+url.PathEscape(id)+"/rewind", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON sends in as JSON and decodes the answer into out. Only calls
// marked retry are repeated, on transport errors and 5xx answers.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			apiErr := &APIError{Status: status}
			var er chessdto.ErrorResponse
			if json.Unmarshal(resp.Body(), &er) == nil {
				apiErr.DomainError = er.Error
			} else {
				apiErr.Message = truncate(string(resp.Body()), 512)
			}
			if !shouldRetryStatus(status) {
				return apiErr
			}
			lastErr = apiErr
		} else {
			if out != nil {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}
		if attempt < attempts {
			if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
				return lastErr
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
