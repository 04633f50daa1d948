package facemesh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration for the face-mesh sidecar client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxFaces   int
	RetryCount int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8501",
		Timeout:    10 * time.Second,
		MaxFaces:   2,
		RetryCount: 2,
	}
}

// Client is the HTTP client for the face-mesh inference sidecar
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new face-mesh client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Detect calls POST /v1/mesh to locate faces and landmarks
func (c *Client) Detect(ctx context.Context, imageBase64 string, minConfidence float64) (*DetectResponse, error) {
	req := DetectRequest{
		Img:           imageBase64,
		MaxFaces:      c.config.MaxFaces,
		MinConfidence: minConfidence,
		StaticMode:    true,
	}

	var resp DetectResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/v1/mesh", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 10 * time.Second

// calculateBackoff returns 1s, 2s, 4s, ... capped at maxBackoff
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	seconds := 1
	for i := 1; i < attempt && i < 6; i++ {
		seconds *= 2
	}
	return time.Duration(seconds) * time.Second
}

// doRequestWithRetry executes HTTP request with retry logic; 4xx responses
// are not retried.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isClientError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrMeshUnavailable, lastErr)
}

// isClientError checks if the error is a 4xx client error
func isClientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for status := 400; status < 500; status++ {
		if strings.Contains(errStr, fmt.Sprintf("status %d", status)) {
			return true
		}
	}
	return false
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("facemesh returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
