package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PVEClient defines the read-only view of a Proxmox VE cluster the checks need.
type PVEClient interface {
	GetNodes(ctx context.Context) ([]Node, error)
	GetNodeDNS(ctx context.Context, node string) (*NodeDNS, error)
	GetQemuVMs(ctx context.Context, node string) ([]QemuVM, error)
	GetQemuConfig(ctx context.Context, node string, vmid int) (*QemuConfig, error)
	GetTasks(ctx context.Context, node, typeFilter string) ([]Task, error)
	GetClusterResources(ctx context.Context) ([]ClusterResource, error)
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
// Either Password or TokenName+TokenValue must be set.
type ClientConfig struct {
	BaseURL            string
	User               string
	Password           string
	TokenName          string
	TokenValue         string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// UsesToken reports whether the config authenticates with an API token.
func (cfg ClientConfig) UsesToken() bool {
	return cfg.TokenName != "" && cfg.TokenValue != ""
}

// DefaultClient implements PVEClient using the standard net/http package.
type DefaultClient struct {
	http   *http.Client
	config ClientConfig

	mu     sync.Mutex
	ticket string
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// DecodeError is returned when a response body is not the expected JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

const maxResponseBytes = 32 * 1024 * 1024

// NewDefaultClient constructs a DefaultClient from the given config.
// It configures TLS verification and request timeout from the config.
// Returns an error if BaseURL is empty or no usable credentials are set.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("user is required")
	}
	if !cfg.UsesToken() && cfg.Password == "" {
		return nil, fmt.Errorf("either password or token_name and token_value are required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the configured API base URL, e.g. https://pve1:8006/api2/json.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

// envelope is the wrapper every PVE API response is delivered in.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// getData performs a GET request and decodes the "data" member of the
// response envelope into out.
func (c *DefaultClient) getData(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	body, err := c.doGet(ctx, path)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &DecodeError{Path: path, Err: fmt.Errorf("response has no data")}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// doGet performs a GET request to the given path (relative to BaseURL).
// It sets Accept: application/json and the configured authentication.
// Returns the response body bytes or an error on non-2xx status.
func (c *DefaultClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.authenticate(ctx, req); err != nil {
		return nil, err
	}
	return c.do(req)
}

// do executes req and returns the (size-limited) body of a 2xx response.
func (c *DefaultClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d MB limit", maxResponseBytes/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := truncate(body, 200)
		if msg == "" {
			msg = resp.Status
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: msg}
	}
	return body, nil
}

// authenticate adds the API token header, or the ticket cookie after logging
// in once with the password.
func (c *DefaultClient) authenticate(ctx context.Context, req *http.Request) error {
	if c.config.UsesToken() {
		req.Header.Set("Authorization", fmt.Sprintf("PVEAPIToken=%s!%s=%s",
			c.config.User, c.config.TokenName, c.config.TokenValue))
		return nil
	}

	ticket, err := c.loginTicket(ctx)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: "PVEAuthCookie", Value: ticket})
	return nil
}

// loginTicket returns the cached auth ticket, requesting one from
// /access/ticket on first use.
func (c *DefaultClient) loginTicket(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticket != "" {
		return c.ticket, nil
	}

	form := url.Values{}
	form.Set("username", c.config.User)
	form.Set("password", c.config.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpointTicket), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	var resp struct {
		Data *Ticket `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &DecodeError{Path: endpointTicket, Err: err}
	}
	if resp.Data == nil || resp.Data.Ticket == "" {
		return "", fmt.Errorf("login: no ticket in response for user %q", c.config.User)
	}
	c.ticket = resp.Data.Ticket
	return c.ticket, nil
}

func (c *DefaultClient) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
