package schematron

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/sync/singleflight"

	"github.com/gocda/validator/cache"
)

// defaultCacheSize is the number of distinct rule files kept in memory.
// Deployments validate against a handful of rule files, so a small
// cache covers them all.
const defaultCacheSize = 64

// Outcome is a cached repair result: the repaired serialization plus
// the stats of the pass that produced it.
type Outcome struct {
	Content []byte      `msgpack:"content"`
	Stats   RepairStats `msgpack:"stats"`
}

// Repairer wraps Repair with content-addressed caching.
//
// Rule files are fingerprinted by SHA-256, so each distinct file is
// repaired once no matter how many engines or validation runs share it.
// Concurrent requests for the same content are coalesced into a single
// repair pass. Malformed content is never cached; every call re-parses
// and re-reports the error.
type Repairer struct {
	cache *cache.Cache[string, *Outcome]
	group singleflight.Group
	disk  *DiskCache
}

// RepairerOption configures a Repairer.
type RepairerOption func(*Repairer)

// WithCacheSize sets the in-memory cache capacity (distinct rule files).
func WithCacheSize(size int) RepairerOption {
	return func(r *Repairer) {
		if size > 0 {
			r.cache = cache.New[string, *Outcome](size)
		}
	}
}

// WithDiskCache adds a persistent second-level cache so repair outcomes
// survive process restarts.
func WithDiskCache(disk *DiskCache) RepairerOption {
	return func(r *Repairer) {
		r.disk = disk
	}
}

// NewRepairer creates a repairer with an in-memory fingerprint cache.
func NewRepairer(opts ...RepairerOption) *Repairer {
	r := &Repairer{
		cache: cache.New[string, *Outcome](defaultCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fingerprint returns the cache key for rule content: the hex-encoded
// SHA-256 of the raw bytes.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Repair returns the repaired serialization of the given rule content,
// computing it on first sight and serving it from cache afterwards.
//
// The returned bytes are shared with the cache; callers must not modify
// them. The returned stats are a private copy. Malformed content
// returns the original bytes, nil stats, and an error wrapping
// ErrMalformed, exactly like the package-level Repair.
func (r *Repairer) Repair(content []byte) ([]byte, *RepairStats, error) {
	key := Fingerprint(content)

	if o, ok := r.cache.Get(key); ok {
		s := o.Stats
		return o.Content, &s, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Another flight may have stored the outcome between our miss
		// and this call.
		if o, ok := r.cache.Get(key); ok {
			return o, nil
		}

		if r.disk != nil {
			if o, ok := r.disk.Get(key); ok {
				r.cache.Set(key, o)
				return o, nil
			}
		}

		out, stats, err := Repair(content)
		if err != nil {
			return nil, err
		}

		o := &Outcome{Content: out, Stats: *stats}
		r.cache.Set(key, o)
		if r.disk != nil {
			// Best effort: a full disk or read-only cache dir must not
			// fail the repair.
			_ = r.disk.Put(key, o)
		}
		return o, nil
	})
	if err != nil {
		return content, nil, err
	}

	o := v.(*Outcome)
	s := o.Stats
	return o.Content, &s, nil
}

// CacheStats returns in-memory cache statistics.
func (r *Repairer) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// ClearCache drops all cached outcomes from memory. The disk cache, if
// any, is left in place.
func (r *Repairer) ClearCache() {
	r.cache.Clear()
}
