package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)

	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("期望 1，实际 %d (ok=%v)", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("不存在的键不应命中")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)

	c.Set("short", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("过期项不应命中")
	}
	// 过期项在 Get 时顺手删除
	if c.Size() != 0 {
		t.Errorf("过期项应被清理，实际剩余 %d", c.Size())
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	c := NewInMemoryCache[string, string](20 * time.Millisecond)

	c.Set("k", "v", 0) // ttl 为 0 时使用默认值
	if _, ok := c.Get("k"); !ok {
		t.Error("未过期时应命中")
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("默认 TTL 到期后不应命中")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := NewInMemoryCache[int, int](time.Minute)

	c.Set(1, 10, 0)
	c.Set(2, 20, 0)

	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Error("删除后不应命中")
	}
	if c.Size() != 1 {
		t.Errorf("期望剩 1 项，实际 %d", c.Size())
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("清空后应为 0，实际 %d", c.Size())
	}
}
