package rekognition

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// Config holds configuration for the AWS Rekognition detector
type Config struct {
	// Region is the AWS region where Rekognition will be called
	Region string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region: "us-east-1",
	}
}

// Client wraps the AWS Rekognition client
type Client struct {
	rekognition *rekognition.Client
	config      Config
}

// NewClient creates a new Rekognition client with the provided configuration.
// It uses the AWS default credential chain to authenticate.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}
