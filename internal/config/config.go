package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database (optional; when empty the audit trail is disabled)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Inference providers
	DetectorType     string        `envconfig:"DETECTOR_TYPE" default:"facemesh"`
	FaceMeshURL      string        `envconfig:"FACEMESH_URL" default:"http://localhost:8501"`
	SegmenterType    string        `envconfig:"SEGMENTER_TYPE" default:"deeplab"`
	DeepLabURL       string        `envconfig:"DEEPLAB_URL" default:"http://localhost:8502"`
	AWSRegion        string        `envconfig:"AWS_REGION" default:"us-east-1"`
	InferenceTimeout time.Duration `envconfig:"INFERENCE_TIMEOUT" default:"10s"`

	// Admission control: concurrent validations allowed in flight.
	// Zero means unbounded.
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"8"`

	// Upload limit in bytes
	MaxImageSize int `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`

	Checks Checks
}

// Checks holds every validation threshold. Defaults follow the reference
// passport requirements: 2:3 portrait, 600px short side, frontal pose.
type Checks struct {
	TargetAspectRatio    float64 `envconfig:"CHECK_TARGET_ASPECT_RATIO" default:"1.5"`
	AspectRatioTolerance float64 `envconfig:"CHECK_ASPECT_RATIO_TOLERANCE" default:"0.05"`
	MinResolution        int     `envconfig:"CHECK_MIN_RESOLUTION" default:"600"`
	BlockinessThreshold  float64 `envconfig:"CHECK_BLOCKINESS_THRESHOLD" default:"15.0"`

	BlurThreshold    float64 `envconfig:"CHECK_BLUR_THRESHOLD" default:"100.0"`
	MinContrast      float64 `envconfig:"CHECK_MIN_CONTRAST" default:"30.0"`
	BrightnessLow    uint8   `envconfig:"CHECK_BRIGHTNESS_LOW" default:"50"`
	BrightnessHigh   uint8   `envconfig:"CHECK_BRIGHTNESS_HIGH" default:"220"`
	DarkPixelRatio   float64 `envconfig:"CHECK_DARK_PIXEL_RATIO" default:"0.5"`
	BrightPixelRatio float64 `envconfig:"CHECK_BRIGHT_PIXEL_RATIO" default:"0.5"`
	MeanDarkLimit    float64 `envconfig:"CHECK_MEAN_DARK_LIMIT" default:"60"`
	MeanBrightLimit  float64 `envconfig:"CHECK_MEAN_BRIGHT_LIMIT" default:"200"`
	ShadowDifference float64 `envconfig:"CHECK_SHADOW_DIFFERENCE" default:"60"`

	DetectionConfidence float64 `envconfig:"CHECK_DETECTION_CONFIDENCE" default:"0.7"`

	MaxYaw   float64 `envconfig:"CHECK_MAX_YAW" default:"15.0"`
	MaxPitch float64 `envconfig:"CHECK_MAX_PITCH" default:"10.0"`
	MaxRoll  float64 `envconfig:"CHECK_MAX_ROLL" default:"10.0"`

	MinFaceAreaRatio   float64 `envconfig:"CHECK_MIN_FACE_AREA_RATIO" default:"0.5"`
	MaxFaceAreaRatio   float64 `envconfig:"CHECK_MAX_FACE_AREA_RATIO" default:"0.7"`
	CenterTolerance    float64 `envconfig:"CHECK_CENTER_TOLERANCE" default:"0.15"`
	OcclusionThreshold float64 `envconfig:"CHECK_OCCLUSION_THRESHOLD" default:"0.3"`

	BackgroundVariance  float64 `envconfig:"CHECK_BACKGROUND_VARIANCE" default:"10.0"`
	ExtraneousAreaRatio float64 `envconfig:"CHECK_EXTRANEOUS_AREA_RATIO" default:"0.05"`
	MinPersonArea       int     `envconfig:"CHECK_MIN_PERSON_AREA" default:"1000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
