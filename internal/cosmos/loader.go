package cosmos

import (
	"bytes"
	"context"
	"fmt"

	"github.com/RMahshie/seisview/internal/storage"
	"github.com/RMahshie/seisview/pkg/models"
)

// Loader downloads COSMOS files from a store and parses them
type Loader struct {
	store storage.Store
}

// NewLoader creates a loader reading from store
func NewLoader(store storage.Store) *Loader {
	return &Loader{store: store}
}

// Load fetches and parses the file at key. Missing keys keep matching
// fs.ErrNotExist.
func (l *Loader) Load(ctx context.Context, key string) (*models.File, error) {
	data, err := l.store.DownloadFile(ctx, key)
	if err != nil {
		return nil, err
	}

	file, err := Parse(bytes.NewReader(data), key)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return file, nil
}
