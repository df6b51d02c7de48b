package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ethpkg/donate/internal/fileutil"
)

const cacheFilePerm = 0o640

// ErrCorruptCache indicates the cache file is not valid JSON.
var ErrCorruptCache = errors.New("cache file is corrupted")

// FileStorage persists a QuoteCache as a JSON file.
type FileStorage struct {
	path string
}

// NewFileStorage returns storage backed by path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the cache file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads the cache. A missing file yields an empty cache. A corrupt file
// is moved aside and also yields an empty cache, together with ErrCorruptCache.
func (s *FileStorage) Load() (*QuoteCache, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewQuoteCache(), nil
	}
	if err != nil {
		return NewQuoteCache(), fmt.Errorf("reading cache file: %w", err)
	}

	c := NewQuoteCache()
	if err := json.Unmarshal(data, c); err != nil {
		aside := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			return NewQuoteCache(), fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptCache, err, renameErr)
		}
		return NewQuoteCache(), fmt.Errorf("%w: %w (moved to %s)", ErrCorruptCache, err, aside)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	return c, nil
}

// Save writes c to disk atomically.
func (s *FileStorage) Save(c *QuoteCache) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	return fileutil.WriteAtomic(s.path, data, cacheFilePerm)
}

// Delete removes the cache file if it exists.
func (s *FileStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}
