package k8s

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"k8s.io/client-go/kubernetes"
)

const (
	// DefaultClientCacheTTL bounds how long a clientset is reused before it is
	// rebuilt from the cluster details.
	DefaultClientCacheTTL = 5 * time.Minute

	// DefaultClientCacheMaxEntries caps the number of cached clientsets.
	DefaultClientCacheMaxEntries = 100
)

type clientsetCacheEntry struct {
	key       string
	clientset *kubernetes.Clientset
	expiresAt time.Time
}

// clientsetCache keeps one clientset per distinct ClusterDetails, evicting
// expired entries on access and the least recently used one when full.
type clientsetCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func newClientsetCache(ttl time.Duration, maxSize int) *clientsetCache {
	if ttl <= 0 {
		ttl = DefaultClientCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultClientCacheMaxEntries
	}
	return &clientsetCache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// cacheKey fingerprints every field that affects the built client, so that a
// rotated token or moved endpoint never reuses a stale clientset. The raw
// token is never kept as a map key.
func cacheKey(c ClusterDetails) string {
	h := sha256.New()
	for _, part := range []string{c.Name, c.URL, string(c.EffectiveAuthProvider()), c.ServiceAccountToken, c.CAData, strconv.FormatBool(c.SkipTLSVerify)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *clientsetCache) get(key string) *kubernetes.Clientset {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil
	}
	entry := elem.Value.(*clientsetCacheEntry)
	if c.now().After(entry.expiresAt) {
		c.removeLocked(elem)
		return nil
	}
	c.lru.MoveToFront(elem)
	return entry.clientset
}

func (c *clientsetCache) set(key string, cs *kubernetes.Clientset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*clientsetCacheEntry)
		entry.clientset = cs
		entry.expiresAt = expiresAt
		c.lru.MoveToFront(elem)
		return
	}

	for c.lru.Len() >= c.maxSize {
		c.removeLocked(c.lru.Back())
	}
	c.entries[key] = c.lru.PushFront(&clientsetCacheEntry{key: key, clientset: cs, expiresAt: expiresAt})
}

// Must be called with mu held.
func (c *clientsetCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*clientsetCacheEntry)
	delete(c.entries, entry.key)
	c.lru.Remove(elem)
}

func (c *clientsetCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
