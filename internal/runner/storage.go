package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage persists large task results outside the task output record. The
// workflow host provides its own implementation; LocalStorage backs the
// standalone runner and tests.
type Storage interface {
	// PutFile moves the file at path into storage and returns its URI.
	PutFile(ctx context.Context, path string) (string, error)
}

// LocalStorage stores files under a directory on the local filesystem.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) PutFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer source.Close()

	target := filepath.Join(s.dir, uuid.New().String()+filepath.Ext(path))
	destination, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create storage file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return "", fmt.Errorf("failed to write storage file: %w", err)
	}

	return "file://" + target, nil
}
