// Package subgraph queries the hosted indexing service for historical
// adoption and forwarding records. Indexed history is read-enhancement
// data: every failure is surfaced as IndexUnavailable and callers are
// expected to degrade, not abort.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"petadopt/internal/adoption"
)

const (
	// httpTimeout bounds one query round trip.
	httpTimeout = 30 * time.Second
	// maxResponseBody caps the response size read from the service (1 MB).
	maxResponseBody = 1 << 20
)

// Client is a GraphQL client for the adoption subgraph.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// ClientOptions configures optional client behavior.
type ClientOptions struct {
	// HTTPClient overrides the default HTTP client (useful for testing).
	HTTPClient *http.Client
	// MaxRetries is the number of retry attempts per query.
	MaxRetries int
	// RetryBackoff is the initial backoff between retries.
	RetryBackoff time.Duration
	// Logger for query diagnostics.
	Logger *zap.Logger
}

// NewClient creates a subgraph client for the given query endpoint.
func NewClient(endpoint string, opts *ClientOptions) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("subgraph endpoint is required")
	}

	c := &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: httpTimeout},
		maxRetries:   2,
		retryBackoff: 500 * time.Millisecond,
		logger:       zap.NewNop(),
	}
	if opts != nil {
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.MaxRetries > 0 {
			c.maxRetries = opts.MaxRetries
		}
		if opts.RetryBackoff > 0 {
			c.retryBackoff = opts.RetryBackoff
		}
		if opts.Logger != nil {
			c.logger = opts.Logger
		}
	}
	return c, nil
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// query posts one GraphQL document and unmarshals the data payload into out.
func (c *Client) query(ctx context.Context, document string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(gqlRequest{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	var data json.RawMessage
	err = withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var attemptErr error
		data, attemptErr = c.post(ctx, body)
		if attemptErr != nil {
			c.logger.Warn("subgraph query failed", zap.Error(attemptErr))
		}
		return attemptErr
	})
	if err != nil {
		return adoption.WrapError(adoption.KindIndexUnavailable, "indexing service unavailable", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return adoption.WrapError(adoption.KindIndexUnavailable, "malformed indexing response", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed gqlResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("service error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("response carries no data")
	}
	return parsed.Data, nil
}
