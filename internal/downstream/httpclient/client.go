package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 5 * time.Second
	userNameHeader = "User-Name"
)

// Options configures one downstream service client.
type Options struct {
	BaseURL   string
	HealthURL string
	// Timeout bounds every call, including reading the response body.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewHTTPClient builds the shared transport for all downstream clients.
// Requests are traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type endpoint struct {
	service   string
	baseURL   string
	healthURL string
	timeout   time.Duration
	http      *http.Client
}

func newEndpoint(service string, opts Options) *endpoint {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(timeout)
	}
	return &endpoint{
		service:   service,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		healthURL: opts.HealthURL,
		timeout:   timeout,
		http:      client,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
	out    any
	// lookup marks calls addressing a single resource; a 404 then means the
	// resource is absent rather than the endpoint being misrouted.
	lookup bool
}

func (e *endpoint) do(ctx context.Context, req request) (err error) {
	target := e.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	operation := req.method + " " + target

	logger.ExternalServiceCall(e.service, operation)
	defer func() { logger.ExternalServiceResult(e.service, operation, err) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", e.service, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%w: build %s: %v", downstream.ErrUnavailable, operation, err)
	}
	for name, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	httpReq.Header.Set("Accept", "application/json")
	if username, ok := downstream.UserNameFromContext(ctx); ok && httpReq.Header.Get(userNameHeader) == "" {
		httpReq.Header.Set(userNameHeader, username)
	}

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", downstream.ErrUnavailable, operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && req.lookup:
		return fmt.Errorf("%w: %s", downstream.ErrNotFound, operation)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s: status %d", downstream.ErrUnavailable, operation, resp.StatusCode)
	}

	if req.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", downstream.ErrUnavailable, operation, err)
	}
	return nil
}

func (e *endpoint) ping(ctx context.Context) (err error) {
	if e.healthURL == "" {
		return nil
	}
	operation := http.MethodGet + " " + e.healthURL
	defer func() { logger.ExternalServiceResult(e.service, operation, err) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.healthURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build %s: %v", downstream.ErrUnavailable, operation, err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", downstream.ErrUnavailable, operation, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: status %d", downstream.ErrUnavailable, operation, resp.StatusCode)
	}
	return nil
}
