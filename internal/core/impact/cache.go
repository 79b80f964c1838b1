package impact

import "sync"

// Cache 解析結果快取，鍵為小寫食物名稱
type Cache interface {
	Get(key string) (*Record, bool)
	Set(key string, rec *Record)
	Len() int
}

// MemoryCache 行程生命週期的記憶體快取，沒有 TTL；同鍵並行寫入時後寫者勝出
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]*Record
}

// NewMemoryCache 創建記憶體快取
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]*Record)}
}

// Get 實作 Cache
func (c *MemoryCache) Get(key string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.store[key]
	return rec, ok
}

// Set 實作 Cache
func (c *MemoryCache) Set(key string, rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = rec
}

// Len 實作 Cache
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
