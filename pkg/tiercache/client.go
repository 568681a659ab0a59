package tiercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// Default server paths, relative to the base URL.
const (
	DefaultCheckPath     = "/billing/subscription"
	DefaultReconcilePath = "/billing/reconcile"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (5s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithBearerToken authenticates every request.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithPaths overrides the check and reconcile paths.
func WithPaths(check, reconcile string) ClientOption {
	return func(c *Client) {
		c.checkPath = check
		c.reconcilePath = reconcile
	}
}

// Client calls the server's tier endpoints.
type Client struct {
	base          string
	http          *http.Client
	token         string
	checkPath     string
	reconcilePath string
	now           func() time.Time
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:          strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 5 * time.Second},
		checkPath:     DefaultCheckPath,
		reconcilePath: DefaultReconcilePath,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reads the caller's current entitlements.
func (c *Client) Check(ctx context.Context) (Snapshot, error) {
	var e subscription.Entitlements
	if err := c.do(ctx, http.MethodGet, c.checkPath, &e); err != nil {
		return Snapshot{}, err
	}
	return FromEntitlements(e, c.now()), nil
}

// Reconcile asks the server to re-derive the caller's record from the billing provider.
func (c *Client) Reconcile(ctx context.Context) (subscription.ReconcileResult, error) {
	var res subscription.ReconcileResult
	err := c.do(ctx, http.MethodPost, c.reconcilePath, &res)
	return res, err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil && resp.StatusCode < 300 {
		return errors.Join(ErrDecodeResponse, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return subscription.ErrUnauthenticated
	case resp.StatusCode >= 300:
		code := ""
		if env.Error != nil {
			code = env.Error.Code
		}
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, code)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}
