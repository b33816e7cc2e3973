package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// File is a mirror file on the local filesystem.
type File struct {
	path string
}

// Open binds path as a mirror file. The file need not exist yet.
func Open(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve mirror path: %w", err)
	}
	return &File{path: abs}, nil
}

// Name returns the absolute path.
func (f *File) Name() string {
	return f.path
}

// Read returns the whole content. A missing file reads as empty.
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read mirror %s: %w", f.path, err)
	}
	return string(data), nil
}

// Write overwrites the whole file. The write is not atomic; an interrupted
// write can leave a truncated file behind.
func (f *File) Write(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write mirror %s: %w", f.path, err)
	}
	slog.Debug("Wrote mirror file", "path", f.path, "bytes", len(content))
	return nil
}
