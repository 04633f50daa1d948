package deeplab

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/adastrum/photogate/internal/inference"
)

// SegmentRequest is the request body for POST /v1/segment
type SegmentRequest struct {
	Img string `json:"img"` // base64-encoded image
}

// SegmentResponse carries the class map, one byte per pixel, base64-encoded.
// The sidecar may downscale; width/height declare the mask resolution.
type SegmentResponse struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Classes string `json:"classes"`
}

// Segmenter implements inference.Segmenter against the DeepLab sidecar.
type Segmenter struct {
	client *Client
}

// NewSegmenter creates a new DeepLab segmenter
func NewSegmenter(config Config) *Segmenter {
	return &Segmenter{
		client: NewClient(config),
	}
}

// Segment produces a subject-vs-background class mask for the image.
func (s *Segmenter) Segment(ctx context.Context, image []byte) (*inference.Mask, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := s.client.Segment(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("segment image: %w", err)
	}

	if resp.Width <= 0 || resp.Height <= 0 {
		return nil, fmt.Errorf("%w: mask dimensions %dx%d", ErrInvalidResponse, resp.Width, resp.Height)
	}

	classes, err := base64.StdEncoding.DecodeString(resp.Classes)
	if err != nil {
		return nil, fmt.Errorf("%w: classes field: %v", ErrInvalidResponse, err)
	}
	if len(classes) != resp.Width*resp.Height {
		return nil, fmt.Errorf("%w: mask size %d does not match %dx%d",
			ErrInvalidResponse, len(classes), resp.Width, resp.Height)
	}

	return &inference.Mask{
		Width:   resp.Width,
		Height:  resp.Height,
		Classes: classes,
	}, nil
}

// Ensure Segmenter implements inference.Segmenter
var _ inference.Segmenter = (*Segmenter)(nil)
