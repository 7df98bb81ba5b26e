package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitosepg/cameracapture/internal/infrastructure/config"
)

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--paper", "b5",
		"--dpi", "600",
		"--swap",
		"--scene", "scene.png",
		"--out", "/tmp/captures",
		"--locale", "ja",
	}))

	cfg := &config.Config{
		Capture: config.CaptureConfig{PaperSize: "A4", DPI: 350, DPIToPPIRatio: 2, Naming: "FIXED"},
		Target:  config.TargetConfig{Kind: "chromedp"},
		Storage: config.StorageConfig{Kind: "s3"},
	}
	opts := options{paperSize: "b5", dpi: 600, swap: true, scene: "scene.png", outDir: "/tmp/captures", locale: "ja"}
	applyFlags(cmd, cfg, opts)

	assert.Equal(t, "b5", cfg.Capture.PaperSize)
	assert.Equal(t, 600.0, cfg.Capture.DPI)
	assert.True(t, cfg.Capture.Swap)
	assert.Equal(t, "ja", cfg.Capture.Locale)
	assert.Equal(t, 2.0, cfg.Capture.DPIToPPIRatio, "unset flags keep config values")
	assert.Equal(t, "FIXED", cfg.Capture.Naming)
	assert.Equal(t, "image", cfg.Target.Kind)
	assert.Equal(t, "scene.png", cfg.Target.ScenePath)
	assert.Equal(t, "filesystem", cfg.Storage.Kind)
	assert.Equal(t, "/tmp/captures", cfg.Storage.BasePath)
}
