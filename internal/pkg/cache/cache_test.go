package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIgnoresAgentOrder(t *testing.T) {
	a := Key("octo/app", "main", []string{"security", "code_analysis", "ui_ux"})
	b := Key("octo/app", "main", []string{"ui_ux", "security", "code_analysis"})
	c := Key("octo/app", "main", []string{"security", "code_analysis"})
	d := Key("octo/app", "dev", []string{"security", "code_analysis", "ui_ux"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "不同 Agent 子集应产生不同键")
	assert.NotEqual(t, a, d, "不同分支应产生不同键")
	assert.Equal(t, "octo/app:main:code_analysis,security,ui_ux", a)
}

func TestKeyDoesNotMutateInput(t *testing.T) {
	ids := []string{"b", "a"}
	_ = Key("r", "main", ids)
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestCacheHitAndMiss(t *testing.T) {
	c, err := New[int](2)
	require.NoError(t, err)

	key := Key("octo/app", "main", []string{"security", "code_analysis"})
	c.Set(key, 7)

	v, ok := c.Get(Key("octo/app", "main", []string{"code_analysis", "security"}))
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = c.Get(Key("octo/app", "main", []string{"code_analysis"}))
	assert.False(t, ok)

	s := c.Stats()
	assert.Equal(t, Stats{Size: 1, MaxSize: 2, Hits: 1, Misses: 1, HitRate: 0.5}, s)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[string](2)
	require.NoError(t, err)

	c.Set("a", "A")
	c.Set("b", "B")
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", "C")

	_, ok = c.Get("b")
	assert.False(t, ok, "b 最久未使用应被淘汰")
	if diff := cmp.Diff([]string{"a", "c"}, c.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheClear(t *testing.T) {
	c, err := New[int](0)
	require.NoError(t, err)
	c.Set("a", 1)
	_, _ = c.Get("a")
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	s := c.Stats()
	assert.Equal(t, 0, s.Size)
	assert.Equal(t, DefaultMaxSize, s.MaxSize)
	assert.Equal(t, int64(1), s.Misses)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c, err := New[int](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%32)
				c.Set(key, j)
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	s := c.Stats()
	assert.LessOrEqual(t, s.Size, 16)
	assert.Equal(t, int64(800), s.Hits+s.Misses)
}
