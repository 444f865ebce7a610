// Package upstream is C7: the HTTP client the gateway uses to talk to its
// single Copilot-compatible backend. Grounded on the teacher's
// pkg/internal/http.Client (request/response builder over net/http) and
// pkg/internal/retry (exponential backoff), adapted from a generic
// multi-provider HTTP helper into the two fixed calls spec.md §6's
// UpstreamClient interface names.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
	"github.com/copilot-gateway/gateway/pkg/gatewayerrors"
	"github.com/copilot-gateway/gateway/pkg/modelcatalog"
	"github.com/copilot-gateway/gateway/pkg/retryutil"
	"github.com/copilot-gateway/gateway/pkg/stream"
)

// RequestOptions carries the per-request flags C5 derives, turned into
// headers the Copilot-compatible backend expects.
type RequestOptions struct {
	Vision    bool
	Initiator string
}

// Client is the concrete UpstreamClient implementation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New constructs a Client. A zero Timeout defaults to 120s, long enough for
// a non-streaming reasoning-heavy completion.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{httpClient: httpClient, baseURL: cfg.BaseURL, token: cfg.Token}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, opts *RequestOptions) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("upstream: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if opts != nil {
		if opts.Vision {
			req.Header.Set("X-Vision-Request", "true")
		}
		if opts.Initiator != "" {
			req.Header.Set("X-Initiator", opts.Initiator)
		}
	}
	return req, nil
}

// ResponsesResult is the non-streaming Responses result.
type ResponsesResult struct {
	Response *responses.Response
}

// ChatCompletionsResult is the non-streaming ChatCompletions result.
type ChatCompletionsResult struct {
	Response *chatcompletions.Response
}

// CreateResponses calls POST /responses. When payload.Stream is true, the
// non-streaming result is nil and the returned stream.EventSource yields the
// raw SSE records for C4; otherwise the event source is nil.
func (c *Client) CreateResponses(ctx context.Context, payload *responses.Request, opts RequestOptions) (*ResponsesResult, stream.EventSource, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/responses", payload, &opts)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, gatewayerrors.UpstreamTransportError{StatusCode: 0, Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, gatewayerrors.UpstreamTransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream responded %d: %s", resp.StatusCode, string(body)),
		}
	}

	if payload.Stream {
		return nil, stream.NewSSEEventSource(resp.Body), nil
	}

	defer resp.Body.Close()
	var result responses.Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, gatewayerrors.UpstreamProtocolError{Message: "decoding non-stream /responses body", Err: err}
	}
	return &ResponsesResult{Response: &result}, nil, nil
}

// CreateChatCompletions calls POST /chat/completions.
func (c *Client) CreateChatCompletions(ctx context.Context, payload *chatcompletions.Request) (*ChatCompletionsResult, stream.EventSource, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", payload, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, gatewayerrors.UpstreamTransportError{StatusCode: 0, Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, gatewayerrors.UpstreamTransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream responded %d: %s", resp.StatusCode, string(body)),
		}
	}

	if payload.Stream {
		return nil, stream.NewSSEEventSource(resp.Body), nil
	}

	defer resp.Body.Close()
	var result chatcompletions.Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, gatewayerrors.UpstreamProtocolError{Message: "decoding non-stream /chat/completions body", Err: err}
	}
	return &ChatCompletionsResult{Response: &result}, nil, nil
}

// FetchModels implements modelcatalog.Fetcher against GET /models, the only
// call this client retries (idempotent, never mid-stream).
func (c *Client) FetchModels(ctx context.Context) ([]modelcatalog.Model, error) {
	var models []modelcatalog.Model

	err := retryutil.Do(ctx, retryutil.DefaultConfig(), func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, "/models", nil, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("upstream /models responded %d: %s", resp.StatusCode, string(body))
		}
		var payload struct {
			Data []modelcatalog.Model `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("decoding /models body: %w", err)
		}
		models = payload.Data
		return nil
	})

	return models, err
}
