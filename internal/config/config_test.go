package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "facemesh", cfg.DetectorType)
	assert.Equal(t, "deeplab", cfg.SegmenterType)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 10<<20, cfg.MaxImageSize)

	assert.InDelta(t, 1.5, cfg.Checks.TargetAspectRatio, 1e-9)
	assert.Equal(t, 600, cfg.Checks.MinResolution)
	assert.InDelta(t, 15.0, cfg.Checks.MaxYaw, 1e-9)
	assert.InDelta(t, 0.5, cfg.Checks.MinFaceAreaRatio, 1e-9)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("DETECTOR_TYPE", "mock")
	t.Setenv("CHECK_MAX_YAW", "20")
	t.Setenv("CHECK_MIN_RESOLUTION", "300")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mock", cfg.DetectorType)
	assert.InDelta(t, 20.0, cfg.Checks.MaxYaw, 1e-9)
	assert.Equal(t, 300, cfg.Checks.MinResolution)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "many")

	_, err := Load()
	assert.Error(t, err)
}
