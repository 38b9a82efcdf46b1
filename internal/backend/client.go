package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gridpoint/facilitymap-core/internal/infrastructure/config"
)

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client talks to the facility backend. Each endpoint keeps its own
// validation policy: sitemap and sidebar degrade gracefully, rooms and
// warnings reject a payload wholesale on the first schema violation.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        config.BackendConfig
	logger     Logger
}

// NewClient builds a backend client from configuration.
func NewClient(cfg config.BackendConfig, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		cfg:        cfg,
		logger:     logger,
	}
}

// url resolves an endpoint template against the base URL, substituting
// the location path placeholder when one is given.
func (c *Client) url(endpoint, locationPath string) string {
	resolved := c.cfg.ResolveEndpoint(endpoint)
	if locationPath != "" {
		resolved = strings.ReplaceAll(resolved, "{locationPath}", locationPath)
	}
	return resolved
}

// getJSON performs a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return c.do(req, out)
}

// sendJSON performs a request with a JSON body and decodes the response
// into out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	return nil
}
