// Package assets resolves atlas and page files from directories and GRF
// archives.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/pkg/grf"
)

// ErrNotFound is returned when no directory or archive has the file.
var ErrNotFound = errors.New("asset not found")

// Manager looks files up in plain directories first, then in archives.
// It satisfies atlas.Source.
type Manager struct {
	dirs     []string
	archives []*grf.Archive
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates an empty manager. log may be nil.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// AddDir adds a directory to search. Directories are searched in the
// order added, before any archive.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// AddArchive opens a GRF archive and adds it to the search list.
// Archives are searched in reverse order (last added wins).
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()

	m.log.Info("archive added", zap.String("path", path), zap.Int("files", len(archive.List())))
	return nil
}

// Archives returns the opened archives in the order added.
func (m *Manager) Archives() []*grf.Archive {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*grf.Archive(nil), m.archives...)
}

// Read returns the contents of a slash-separated path.
func (m *Manager) Read(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, dir := range m.dirs {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path.Clean(name))))
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	for i := len(m.archives) - 1; i >= 0; i-- {
		data, err := m.archives[i].Read(name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, grf.ErrNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Forget drops cached copies so the next Read goes back to disk.
func (m *Manager) Forget(names ...string) {
	for _, name := range names {
		m.cache.Delete(name)
	}
}

// Cache returns the read cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close closes all archives and empties the cache.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, archive := range m.archives {
		if err := archive.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.archives = nil
	m.cache.Clear()
	return errors.Join(errs...)
}

// Cache is an in-memory file cache.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get returns a cached entry.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an entry.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes one entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear empties the cache and resets its statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
