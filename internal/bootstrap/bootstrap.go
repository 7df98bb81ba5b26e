// Package bootstrap builds the capture components from configuration.
// The server and the one-shot CLI share it.
package bootstrap

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"go.uber.org/zap"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/infrastructure/config"
	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
	"github.com/chitosepg/cameracapture/internal/infrastructure/storage"
)

// CaptureSettings returns the initial capture settings
func CaptureSettings(cfg config.CaptureConfig) capture.CaptureConfig {
	return capture.CaptureConfig{
		PaperSize:     capture.PaperSize(strings.ToUpper(strings.TrimSpace(cfg.PaperSize))),
		PaperWidthMM:  cfg.PaperWidthMM,
		PaperHeightMM: cfg.PaperHeightMM,
		Swap:          cfg.Swap,
		DPI:           cfg.DPI,
		DPIToPPIRatio: cfg.DPIToPPIRatio,
		MaximumPixels: cfg.MaximumPixels,
	}
}

// CaptureOptions returns the pipeline options. Values are validated when the
// session is created.
func CaptureOptions(cfg config.CaptureConfig) captureapp.Options {
	return captureapp.Options{
		PixelFormat:         capture.PixelFormat(strings.ToUpper(cfg.PixelFormat)),
		Naming:              capture.NamingStrategy(strings.ToUpper(cfg.Naming)),
		Collision:           capture.CollisionPolicy(strings.ToUpper(cfg.Collision)),
		YieldsAfterAllocate: cfg.YieldsAfterAllocate,
		YieldsAfterRender:   cfg.YieldsAfterRender,
		Locale:              cfg.Locale,
	}
}

// Target is a render target the caller must Close
type Target interface {
	render.Target
	io.Closer
}

type nopCloser struct {
	*render.ImageTarget
}

func (nopCloser) Close() error { return nil }

// NewTarget builds the configured render target. With StartIdle the target
// starts inactive and captures fail with NOT_ACTIVE until it is switched on.
func NewTarget(cfg config.TargetConfig, logger *zap.Logger) (Target, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var target Target
	switch cfg.Kind {
	case "", "image":
		var scene image.Image
		if cfg.ScenePath != "" {
			var err error
			if scene, err = render.LoadScene(cfg.ScenePath); err != nil {
				return nil, err
			}
		}
		background, err := render.ParseColor(cfg.Background)
		if err != nil {
			return nil, fmt.Errorf("target.background: %w", err)
		}
		target = nopCloser{render.NewImageTarget(&render.ImageTargetConfig{
			Scene:      scene,
			Background: background,
			Logger:     logger.Named("image_target"),
		})}
	case "chromedp":
		t, err := render.NewChromedpTarget(&render.ChromedpConfig{
			URL:            cfg.URL,
			HTML:           cfg.HTML,
			DefaultTimeout: cfg.Timeout,
			RemoteURL:      cfg.RemoteURL,
			NoSandbox:      cfg.NoSandbox,
			Logger:         logger.Named("chromedp_target"),
		})
		if err != nil {
			return nil, err
		}
		target = t
	default:
		return nil, fmt.Errorf("unsupported target kind %q", cfg.Kind)
	}

	if cfg.StartIdle {
		if sw, ok := target.(interface{ SetActive(bool) }); ok {
			sw.SetActive(false)
		}
	}
	logger.Info("Render target ready",
		zap.String("kind", cfg.Kind),
		zap.Bool("active", target.IsActive()))
	return target, nil
}

// NewStorage builds the configured output storage. S3 buckets are created
// when missing.
func NewStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (captureapp.OutputStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Kind {
	case "", "filesystem":
		return storage.NewFileSystemStorage(&storage.FileSystemStorageConfig{
			BasePath: cfg.BasePath,
			Logger:   logger.Named("filesystem_storage"),
		})
	case "s3":
		s, err := storage.NewS3Storage(&cfg, storage.WithLogger(logger.Named("s3_storage")))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage kind %q", cfg.Kind)
	}
}
