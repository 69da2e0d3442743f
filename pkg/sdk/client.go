package mathdex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to a mathdex API server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option interface {
	apply(*Client)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *Client) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.httpClient = hc
	})
}

// New creates a mathdex API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mathdex: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Validate checks whether input is a well-formed mathematical question.
func (c *Client) Validate(ctx context.Context, question string) (ValidationResult, error) {
	var out ValidationResult
	err := c.post(ctx, "/api/validate", map[string]any{"message": question}, &out)
	return out, err
}

// Refine rewrites the question for grammar, clarity and formatting.
func (c *Client) Refine(ctx context.Context, question string) (RefinementResult, error) {
	var out RefinementResult
	err := c.post(ctx, "/api/refine", map[string]any{"message": question}, &out)
	return out, err
}

// Similarity finds corpus questions semantically close to the given one.
// opts can be nil to use server defaults.
func (c *Client) Similarity(ctx context.Context, question string, opts *SimilarityOptions) (SimilarityResult, error) {
	body := map[string]any{"message": question}
	if opts != nil {
		if opts.Threshold != nil {
			body["threshold"] = *opts.Threshold
		}
		if opts.TopK != nil {
			body["top_k"] = *opts.TopK
		}
		if opts.ExcludeExact != nil {
			body["exclude_exact"] = *opts.ExcludeExact
		}
	}

	var out SimilarityResult
	err := c.post(ctx, "/api/similarity", body, &out)
	return out, err
}

// Health reports aggregated component health. A degraded server answers
// with 503 and a report; both are returned.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("mathdex: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("mathdex: health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return HealthReport{}, fmt.Errorf("mathdex: decode health response: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mathdex: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mathdex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mathdex: %s request: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mathdex: decode %s response: %w", path, err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
		apiErr.Code = "unknown"
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
