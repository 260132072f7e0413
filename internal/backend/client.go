// Package backend implements thin typed clients for the jarvis
// microservices. All clients resolve the target URL through the discovery
// endpoint table on every call and classify failures into the adapter's
// error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"jarvismcp/internal/domain"
	"jarvismcp/internal/telemetry"
)

const maxErrorBodyChars = 500

type Client struct {
	endpoints domain.EndpointReader
	http      *http.Client
	headers   map[string]string
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

type ClientOptions struct {
	Endpoints domain.EndpointReader
	HTTP      *http.Client
	// Headers are added to every request (auth credentials).
	Headers map[string]string
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
}

func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoints: opts.Endpoints,
		http:      httpClient,
		headers:   opts.Headers,
		metrics:   opts.Metrics,
		logger:    logger.Named("backend"),
	}
}

// BaseURL returns the current base URL for a backend.
func (c *Client) BaseURL(service string) (string, error) {
	ep, ok := c.endpoints.Endpoint(service)
	if !ok {
		return "", domain.Errorf(domain.CodeBackendError, "backend.resolve", "unknown backend %q", service)
	}
	return ep.BaseURL, nil
}

// GetJSON issues a GET against service and decodes the JSON response into
// out. out may be nil when the body is irrelevant.
func (c *Client) GetJSON(ctx context.Context, service, path string, query url.Values, out any) error {
	return c.do(ctx, service, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, service, path string, body, out any) error {
	return c.do(ctx, service, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, service, method, path string, query url.Values, body, out any) error {
	base, err := c.BaseURL(service)
	if err != nil {
		return err
	}

	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return domain.E(domain.CodeBackendError, "backend.request", "encode request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return domain.E(domain.CodeBackendError, "backend.request", "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveBackendRequest(service, "unavailable")
		return domain.E(domain.CodeBackendUnavailable, "backend.request",
			fmt.Sprintf("%s unreachable", service), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveBackendRequest(service, "error")
		detail := readErrorBody(resp.Body)
		msg := fmt.Sprintf("%s returned %d", service, resp.StatusCode)
		if detail != "" {
			msg += ": " + detail
		}
		return domain.Errorf(domain.CodeBackendError, "backend.request", "%s", msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.ObserveBackendRequest(service, "protocol_error")
			return domain.E(domain.CodeBackendProtocolError, "backend.request",
				fmt.Sprintf("unexpected response from %s", service), err)
		}
	}

	c.metrics.ObserveBackendRequest(service, "ok")
	return nil
}

func readErrorBody(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyChars+1))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBodyChars {
		text = text[:maxErrorBodyChars] + "..."
	}
	return text
}
