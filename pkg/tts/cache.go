package tts

import (
	"bytes"
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/charmbracelet/log"
)

const (
	// DefaultCacheLimit caps the audio cache at 32MB of compressed PCM,
	// roughly twenty minutes of speech.
	DefaultCacheLimit = 32 * 1024 * 1024

	// DefaultCacheTTL is how long an entry stays valid once stored.
	DefaultCacheTTL = 1 * time.Hour

	// cacheKeyVersion is bumped whenever the synthesis pipeline changes
	// in a way that makes previously cached audio stale.
	cacheKeyVersion = "v1"
)

// CacheKey derives the lookup key for a synthesis result. Everything that
// influences the rendered audio participates: engine, voice, language,
// speed, and the text itself.
func CacheKey(engine, voice, language string, speed float64, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%.2f|%s", engine, voice, language, speed, text)
	return cacheKeyVersion + "_" + hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	key        string
	compressed []byte
	rawSize    int
	addedAt    time.Time
}

// AudioCache is an in-memory LRU cache of synthesized audio, keyed by
// CacheKey. Entries are gzip compressed; speech PCM compresses to roughly
// a third of its raw size. A nil *AudioCache is valid and never hits,
// which lets callers disable caching without branching.
type AudioCache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
	size  int64
	limit int64
	ttl   time.Duration
}

// NewAudioCache creates a cache bounded to limit bytes of compressed
// audio. A limit of zero or less uses DefaultCacheLimit.
func NewAudioCache(limit int64) *AudioCache {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &AudioCache{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		limit: limit,
		ttl:   DefaultCacheTTL,
	}
}

// Get returns the cached PCM for key, decompressed, and refreshes the
// entry's LRU position. Expired or corrupt entries are dropped and
// reported as misses.
func (c *AudioCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Since(entry.addedAt) > c.ttl {
		c.removeLocked(elem)
		return nil, false
	}

	zr, err := gzip.NewReader(bytes.NewReader(entry.compressed))
	if err != nil {
		c.removeLocked(elem)
		return nil, false
	}
	pcm, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		log.Debug("dropping corrupt cache entry", "key", key, "error", err)
		c.removeLocked(elem)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return pcm, true
}

// Put stores pcm under key, compressing it and evicting least recently
// used entries until the cache fits its limit. Audio larger than the
// whole cache is silently skipped.
func (c *AudioCache) Put(key string, pcm []byte) {
	if c == nil || len(pcm) == 0 {
		return
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(pcm); err != nil {
		zw.Close()
		return
	}
	if err := zw.Close(); err != nil {
		return
	}
	compressed := buf.Bytes()
	if int64(len(compressed)) > c.limit {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeLocked(elem)
	}
	for c.size+int64(len(compressed)) > c.limit {
		back := c.lru.Back()
		if back == nil {
			break
		}
		c.removeLocked(back)
	}

	entry := &cacheEntry{
		key:        key,
		compressed: compressed,
		rawSize:    len(pcm),
		addedAt:    time.Now(),
	}
	c.items[key] = c.lru.PushFront(entry)
	c.size += int64(len(compressed))
}

// Len returns the number of cached entries.
func (c *AudioCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the compressed bytes currently held.
func (c *AudioCache) Size() int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear drops every entry.
func (c *AudioCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.size = 0
}

func (c *AudioCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.compressed))
}
