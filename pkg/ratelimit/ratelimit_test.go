package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketAllowsUpToCapacity(t *testing.T) {
	tb := NewTokenBucket(3, 1)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("第 %d 次请求应被允许", i+1)
		}
	}
	if tb.Allow() {
		t.Error("令牌用尽后应被拒绝")
	}
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 10)

	if !tb.Allow() {
		t.Fatal("首次请求应被允许")
	}
	if tb.Allow() {
		t.Fatal("令牌应已用尽")
	}

	// 每秒补 10 个，等一秒出头必然补满
	time.Sleep(1100 * time.Millisecond)
	if !tb.Allow() {
		t.Error("补充后应被允许")
	}
}

func TestTokenBucketWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	tb.Allow() // 耗尽令牌

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tb.Wait(ctx)
	if err == nil {
		t.Fatal("超时后应返回错误")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("取消后应尽快返回，实际等待 %v", elapsed)
	}
}

func TestManagerKnownEndpoints(t *testing.T) {
	m := NewManager()

	// 预置端点应直接放行首个请求
	for _, endpoint := range []string{"orders:create", "orders:cancel", "orders:status", "stats:get"} {
		if !m.Allow(endpoint) {
			t.Errorf("端点 %s 首个请求应被允许", endpoint)
		}
	}
}

func TestManagerSetLimiter(t *testing.T) {
	m := NewManager()
	m.SetLimiter("custom", NewTokenBucket(1, 1))

	if !m.Allow("custom") {
		t.Error("首个请求应被允许")
	}
	if m.Allow("custom") {
		t.Error("定制限制器容量为 1，第二个请求应被拒")
	}
}

func TestManagerWait(t *testing.T) {
	m := NewManager()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Wait(ctx, "stats:get"); err != nil {
		t.Errorf("有令牌时等待不应报错: %v", err)
	}
}
