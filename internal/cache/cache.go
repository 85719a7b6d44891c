// Package cache keeps short-lived copies of lookup lists (categories, tags)
// used to resolve names to IDs on the command line.
//
// Entries are scoped per resource and server URL. The default backend is a
// JSON file per entry under the user cache directory; setting
// STOREFRONT_CACHE_REDIS_URL stores entries in Redis instead. Default TTL is
// 5 minutes. Disable with STOREFRONT_NO_CACHE=1.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const DefaultTTL = 5 * time.Minute

// Cache reads and writes a single cache key. Misses and write failures are
// silent: callers fall back to the API.
type Cache interface {
	Get(ctx context.Context, dst any) bool
	Put(ctx context.Context, items any)
	Clear(ctx context.Context)
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Items    json.RawMessage `json:"items"`
}

// Store is the file-backed Cache.
type Store struct {
	path string
	ttl  time.Duration
}

var _ Cache = (*Store)(nil)

// NewStore creates a Store with the default 5-minute TTL.
// dir is the cache directory (typically from DefaultDir), key is the
// resource type (e.g. "categories") and baseURL is the API server.
func NewStore(dir, key, baseURL string) *Store {
	return NewStoreWithTTL(dir, key, baseURL, DefaultTTL)
}

// NewStoreWithTTL creates a Store with a custom TTL.
func NewStoreWithTTL(dir, key, baseURL string, ttl time.Duration) *Store {
	return &Store{
		path: filepath.Join(dir, entryName(key, baseURL)+".json"),
		ttl:  ttl,
	}
}

// Get loads cached items into dst. Returns false on miss (no file, expired, disabled).
func (s *Store) Get(_ context.Context, dst any) bool {
	if Disabled() {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

// Put writes items to the cache.
func (s *Store) Put(_ context.Context, items any) {
	if Disabled() {
		return
	}
	data, err := encodeEntry(items)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

// Clear removes this cache file.
func (s *Store) Clear(context.Context) {
	_ = os.Remove(s.path)
}

// ClearAll removes all cache files from the directory.
// Only files matching this project's cache filename scheme are touched.
func ClearAll(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
}

// DefaultDir returns "$XDG_CACHE_HOME/storefront-cli" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "storefront-cli"), nil
}

// Disabled reports whether caching is turned off through the environment.
func Disabled() bool {
	return os.Getenv("STOREFRONT_NO_CACHE") != ""
}

func encodeEntry(items any) ([]byte, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entry{CachedAt: time.Now(), Items: raw})
}

func decodeEntry(data []byte, ttl time.Duration, dst any) bool {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > ttl {
		return false
	}
	return json.Unmarshal(e.Items, dst) == nil
}

// entryName is "<key>_<12hex>" where the hex part is derived from baseURL.
func entryName(key, baseURL string) string {
	hash := sha1.Sum([]byte(strings.TrimRight(baseURL, "/")))
	return fmt.Sprintf("%s_%s", sanitizeKey(key), hex.EncodeToString(hash[:6]))
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	key = strings.ReplaceAll(key, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

func isCacheFilename(name string) bool {
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	parts := strings.Split(base, "_")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	return len(parts[1]) == 12 && isHex(parts[1])
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
