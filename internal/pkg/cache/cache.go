package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/klog/v2"
)

// DefaultMaxSize 默认容量
const DefaultMaxSize = 100

// Stats 缓存统计
type Stats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"max_size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache 分析结果 LRU 缓存，无 TTL，条目只会被淘汰或 Clear 清除。
// 所有操作由同一把锁串行化，命中统计与淘汰顺序保持一致。
type Cache[V any] struct {
	mu      sync.Mutex
	entries *lru.Cache[string, V]
	maxSize int
	hits    int64
	misses  int64
}

// New 创建容量为 maxSize 的缓存，maxSize<=0 使用默认值
func New[V any](maxSize int) (*Cache[V], error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	entries, err := lru.NewWithEvict[string, V](maxSize, func(key string, _ V) {
		klog.V(6).Infof("分析缓存淘汰: key=%s", key)
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{entries: entries, maxSize: maxSize}, nil
}

// Key 由仓库标识、分支与排序后的 Agent 列表生成缓存键，Agent 顺序不影响结果
func Key(repository, branch string, agentIDs []string) string {
	ids := append([]string(nil), agentIDs...)
	sort.Strings(ids)
	return fmt.Sprintf("%s:%s:%s", repository, branch, strings.Join(ids, ","))
}

// Get 读取缓存，命中时将条目提升为最近使用
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set 写入缓存，容量已满时淘汰最久未使用的条目
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, value)
}

// Clear 清空缓存与统计
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.hits = 0
	c.misses = 0
}

// Keys 从最旧到最新列出缓存键
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Stats 返回缓存统计
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:    c.entries.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
