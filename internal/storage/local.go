package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type localStore struct {
	root string
}

// NewLocalStore serves waveform files from a directory on disk. It has no
// upload endpoint of its own; files are copied into root out of band.
func NewLocalStore(root string) (Store, error) {
	if root == "" {
		return nil, fmt.Errorf("DATA_DIR is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", abs)
	}
	return &localStore{root: abs}, nil
}

func (s *localStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	p := filepath.Join(s.root, clean)
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return p, nil
}

func (s *localStore) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	if err := validateContentType(contentType); err != nil {
		return "", err
	}
	return "", fmt.Errorf("local storage does not support uploads")
}

func (s *localStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

func (s *localStore) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localStore) DeleteFile(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
