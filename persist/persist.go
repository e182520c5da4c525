// Package persist stores fetched wording snapshots so the next start can
// serve remote content without a network round trip.
package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound signals that no snapshot exists for the requested locale. This
// is the expected state on a first run or after an upgrade.
var ErrNotFound = errors.New("no persisted wording snapshot")

// Store reads and writes per-locale wording snapshots.
type Store interface {
	Read(ctx context.Context, locale string) ([]byte, error)
	Write(ctx context.Context, locale string, data []byte) error
}

const persistedFileMode = 0o644

// FileStore keeps one snapshot file per locale. The location of each file is
// decided by the supplied locator, typically Provider.PersistedLocation.
type FileStore struct {
	locate func(locale string) string
}

// NewFileStore creates a file backed snapshot store.
func NewFileStore(locate func(locale string) string) *FileStore {
	return &FileStore{locate: locate}
}

func (f *FileStore) Read(_ context.Context, locale string) ([]byte, error) {
	data, err := os.ReadFile(f.locate(locale))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("locale %q: %w", locale, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Write(_ context.Context, locale string, data []byte) error {
	location := f.locate(locale)

	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("could not create persisted wording directory: %w", err)
	}

	if err := os.WriteFile(location, data, persistedFileMode); err != nil {
		return fmt.Errorf("could not persist wording for %q: %w", locale, err)
	}
	return nil
}
