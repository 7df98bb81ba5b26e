package capture

import (
	"context"
	"io"
)

// OutputStorage persists encoded captures under a fixed output location.
// Names are plain file names without directories.
type OutputStorage interface {
	// Exists reports whether name is already taken
	Exists(ctx context.Context, name string) (bool, error)
	// Write stores data under name, replacing any existing file, and returns
	// the location it was written to
	Write(ctx context.Context, name string, data []byte) (string, error)
	// Open returns the stored file; shared.ErrNotFound when it does not exist
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
