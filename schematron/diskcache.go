package schematron

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskSchemaVersion invalidates persisted entries when the payload
// format changes. Increment it whenever diskEntry or Outcome changes.
const diskSchemaVersion uint16 = 1

// diskEntry is the on-disk payload wrapping a cached outcome.
type diskEntry struct {
	Schema  uint16  `msgpack:"schema"`
	Outcome Outcome `msgpack:"outcome"`
}

// DiskCache persists repair outcomes across process restarts. Entries
// are msgpack files named by content fingerprint, written atomically
// via temp file and rename. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache rooted at dir, creating the
// directory if needed. An empty dir selects the standard per-user cache
// location ($XDG_CACHE_HOME or ~/.cache) under cda-validator/schematron.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate cache directory: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "cda-validator", "schematron")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".mp")
}

// Get reads a cached outcome. Unreadable, corrupt, or stale-schema
// entries count as misses; stale entries are removed best effort.
func (c *DiskCache) Get(key string) (*Outcome, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var entry diskEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil || entry.Schema != diskSchemaVersion {
		_ = os.Remove(p)
		return nil, false
	}

	return &entry.Outcome, true
}

// Put writes an outcome to disk atomically.
func (c *DiskCache) Put(key string, o *Outcome) error {
	if c == nil || o == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "repair-*")
	if err != nil {
		return err
	}

	entry := diskEntry{Schema: diskSchemaVersion, Outcome: *o}
	if err := msgpack.NewEncoder(tmp).Encode(&entry); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), p)
}

// Clear removes all persisted entries.
func (c *DiskCache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
