package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bookbot/goclob/clob/types"
)

// fakeFetcher 受控的快照来源
type fakeFetcher struct {
	calls atomic.Int32
	make  func(call int32) (*types.OrderBookSnapshot, error)
}

func (f *fakeFetcher) FetchStats(ctx context.Context) (*types.OrderBookSnapshot, error) {
	n := f.calls.Add(1)
	if f.make != nil {
		return f.make(n)
	}
	return &types.OrderBookSnapshot{TotalOrders: int(n)}, nil
}

func waitFor(t *testing.T, ch <-chan Snapshot, timeout time.Duration) Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(timeout):
		t.Fatal("等待快照超时")
		return Snapshot{}
	}
}

func TestPollerFetchesImmediately(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := NewPoller(fetcher, time.Hour, nil) // 间隔拉长，只能靠启动时的首拉

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	snap := waitFor(t, p.Updates(), time.Second)
	if snap.Book == nil || snap.Book.TotalOrders != 1 {
		t.Errorf("首个快照错误: %+v", snap)
	}
}

func TestPollerTicks(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := NewPoller(fetcher, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// 首拉 + 至少两个 tick
	first := waitFor(t, p.Updates(), time.Second)
	second := waitFor(t, p.Updates(), time.Second)
	if second.Seq <= first.Seq {
		t.Errorf("序号应递增: %d -> %d", first.Seq, second.Seq)
	}
}

func TestPollerTriggerForcesFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	trigger := NewTrigger()
	p := NewPoller(fetcher, time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, p.Updates(), time.Second) // 首拉

	// 间隔是一小时，此后只有触发器能引起拉取
	trigger.Bump()
	snap := waitFor(t, p.Updates(), time.Second)
	if snap.Book.TotalOrders != 2 {
		t.Errorf("触发后应立即补拉: %+v", snap.Book)
	}
}

func TestPollerDiscardsStaleResponse(t *testing.T) {
	p := NewPoller(&fakeFetcher{}, time.Hour, nil)

	// 直接驱动投递逻辑：新序号先到，旧序号后到
	p.apply(2, &types.OrderBookSnapshot{TotalOrders: 200})
	p.apply(1, &types.OrderBookSnapshot{TotalOrders: 100})

	snap := waitFor(t, p.Updates(), time.Second)
	if snap.Seq != 2 || snap.Book.TotalOrders != 200 {
		t.Errorf("迟到的旧响应应被丢弃: %+v", snap)
	}

	select {
	case extra := <-p.Updates():
		t.Errorf("不应再有投递: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerKeepsNewestWhenUnconsumed(t *testing.T) {
	p := NewPoller(&fakeFetcher{}, time.Hour, nil)

	// 消费方一直不取，通道里只保留最新的
	p.apply(1, &types.OrderBookSnapshot{TotalOrders: 100})
	p.apply(2, &types.OrderBookSnapshot{TotalOrders: 200})
	p.apply(3, &types.OrderBookSnapshot{TotalOrders: 300})

	snap := waitFor(t, p.Updates(), time.Second)
	if snap.Seq != 3 {
		t.Errorf("应拿到最新快照，实际 seq=%d", snap.Seq)
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := NewPoller(fetcher, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	waitFor(t, p.Updates(), time.Second)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("取消后轮询循环未退出")
	}

	// 取消后不再发起新的拉取
	calls := fetcher.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if fetcher.calls.Load() != calls {
		t.Error("取消后仍在拉取")
	}
}

func TestPeriodicFetchAbsorbsPendingTrigger(t *testing.T) {
	fetcher := &fakeFetcher{}
	trigger := NewTrigger()
	p := NewPoller(fetcher, time.Hour, trigger)

	// 定时拉取发生前刚好有一次 Bump：这次拉取已覆盖它
	trigger.Bump()
	p.periodicFetch(context.Background())

	waitFor(t, p.Updates(), time.Second)
	if fetcher.calls.Load() != 1 {
		t.Errorf("期望 1 次拉取，实际 %d", fetcher.calls.Load())
	}

	// 积压信号已被清掉，不会再引起一次补拉
	select {
	case <-trigger.C():
		t.Error("定时拉取后不应残留触发信号")
	default:
	}

	// 计数不回退
	if trigger.Value() != 1 {
		t.Errorf("计数期望 1，实际 %d", trigger.Value())
	}
}

func TestTriggerCoalesces(t *testing.T) {
	trigger := NewTrigger()

	// 连续多次 Bump 合并成一次唤醒，但计数逐次累加
	trigger.Bump()
	trigger.Bump()
	trigger.Bump()

	if trigger.Value() != 3 {
		t.Errorf("计数期望 3，实际 %d", trigger.Value())
	}

	select {
	case <-trigger.C():
	default:
		t.Fatal("应有一次待处理信号")
	}
	select {
	case <-trigger.C():
		t.Error("信号应已合并，不应再有第二次")
	default:
	}
}
