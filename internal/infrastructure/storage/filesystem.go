package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"go.uber.org/zap"
)

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the output directory
	// Default: ./captures
	BasePath string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage writes captures into a single local directory
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates the output directory if needed
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "./captures"
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", config.BasePath, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// Exists reports whether a file with this name is already in the output directory
func (s *FileSystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateName(name); err != nil {
		return false, err
	}

	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", name, err)
}

// Write stores data atomically: it is written to a temporary file in the
// output directory and renamed over name, so readers never see a partial PNG.
func (s *FileSystemStorage) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.config.BasePath, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}

	target := s.path(name)
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	s.logger.Info("capture stored",
		zap.String("path", target),
		zap.Int("size", len(data)))
	return target, nil
}

// Open opens a stored capture for reading
func (s *FileSystemStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return file, nil
}

// BasePath returns the output directory
func (s *FileSystemStorage) BasePath() string {
	return s.config.BasePath
}

func (s *FileSystemStorage) path(name string) string {
	return filepath.Join(s.config.BasePath, name)
}

// Ensure FileSystemStorage implements OutputStorage
var _ captureapp.OutputStorage = (*FileSystemStorage)(nil)
