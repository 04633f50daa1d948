package deeplab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrSegmenterUnavailable = errors.New("segmentation sidecar unavailable")
	ErrInvalidResponse      = errors.New("invalid response from segmentation sidecar")
)

// Config holds the configuration for the segmentation sidecar client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8502",
		Timeout: 20 * time.Second,
	}
}

// Client is the HTTP client for the DeepLab segmentation sidecar
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new segmentation client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Segment calls POST /v1/segment and returns the raw class map.
// Segmentation is the most expensive call in the system; there is no retry
// here, the pipeline treats a failure as a stage-level infrastructure error.
func (c *Client) Segment(ctx context.Context, imageBase64 string) (*SegmentResponse, error) {
	reqBody, err := json.Marshal(SegmentRequest{Img: imageBase64})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + "/v1/segment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmenterUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSegmenterUnavailable, resp.StatusCode, string(respBody))
	}

	var out SegmentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &out, nil
}
