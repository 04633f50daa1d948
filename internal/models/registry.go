// Package models assembles the process-wide inference registry: the face
// detector and segmenter handles are created once at startup, are read-only
// thereafter, and are injected into the pipeline as constructor
// dependencies.
package models

import (
	"context"
	"fmt"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/inference"
	"github.com/adastrum/photogate/internal/inference/deeplab"
	"github.com/adastrum/photogate/internal/inference/facemesh"
	"github.com/adastrum/photogate/internal/inference/mock"
	"github.com/adastrum/photogate/internal/inference/rekognition"
)

// DetectorType defines supported face detector backends
type DetectorType string

const (
	// DetectorFaceMesh is the local face-mesh sidecar (dev and on-prem)
	DetectorFaceMesh DetectorType = "facemesh"
	// DetectorRekognition is AWS Rekognition DetectFaces (cloud)
	DetectorRekognition DetectorType = "rekognition"
	// DetectorMock is the deterministic in-process detector (tests)
	DetectorMock DetectorType = "mock"
)

// SegmenterType defines supported segmentation backends
type SegmenterType string

const (
	// SegmenterDeepLab is the DeepLab sidecar
	SegmenterDeepLab SegmenterType = "deeplab"
	// SegmenterMock is the deterministic in-process segmenter (tests)
	SegmenterMock SegmenterType = "mock"
)

// Registry holds the shared model handles.
type Registry struct {
	Detector  inference.FaceDetector
	Segmenter inference.Segmenter
}

// New builds the registry from configuration.
//
// Environment variables:
//   - DETECTOR_TYPE: "facemesh", "rekognition" or "mock" (default "facemesh")
//   - FACEMESH_URL: face-mesh sidecar URL
//   - SEGMENTER_TYPE: "deeplab" or "mock" (default "deeplab")
//   - DEEPLAB_URL: segmentation sidecar URL
//   - AWS_REGION: region for Rekognition (credentials via the AWS chain)
func New(ctx context.Context, cfg *config.Config) (*Registry, error) {
	detector, err := newDetector(ctx, cfg)
	if err != nil {
		return nil, err
	}

	segmenter, err := newSegmenter(cfg)
	if err != nil {
		return nil, err
	}

	return &Registry{Detector: detector, Segmenter: segmenter}, nil
}

func newDetector(ctx context.Context, cfg *config.Config) (inference.FaceDetector, error) {
	switch DetectorType(cfg.DetectorType) {
	case DetectorRekognition:
		det, err := rekognition.NewDetector(ctx, rekognition.Config{Region: cfg.AWSRegion})
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return det, nil

	case DetectorMock:
		return &mock.Detector{}, nil

	case DetectorFaceMesh, "":
		meshCfg := facemesh.DefaultConfig()
		if cfg.FaceMeshURL != "" {
			meshCfg.BaseURL = cfg.FaceMeshURL
		}
		meshCfg.Timeout = cfg.InferenceTimeout
		return facemesh.NewDetector(meshCfg), nil

	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s, %s)",
			cfg.DetectorType, DetectorFaceMesh, DetectorRekognition, DetectorMock)
	}
}

func newSegmenter(cfg *config.Config) (inference.Segmenter, error) {
	switch SegmenterType(cfg.SegmenterType) {
	case SegmenterMock:
		return &mock.Segmenter{}, nil

	case SegmenterDeepLab, "":
		dlCfg := deeplab.DefaultConfig()
		if cfg.DeepLabURL != "" {
			dlCfg.BaseURL = cfg.DeepLabURL
		}
		dlCfg.Timeout = cfg.InferenceTimeout
		return deeplab.NewSegmenter(dlCfg), nil

	default:
		return nil, fmt.Errorf("unknown segmenter type: %s (supported: %s, %s)",
			cfg.SegmenterType, SegmenterDeepLab, SegmenterMock)
	}
}
