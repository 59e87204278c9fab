// Package watch 负责快照轮询：定时拉取 + 提交后立即刷新。
package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bookbot/goclob/clob/types"
	"github.com/bookbot/goclob/pkg/logger"
)

// StatsFetcher 快照来源
type StatsFetcher interface {
	FetchStats(ctx context.Context) (*types.OrderBookSnapshot, error)
}

// Snapshot 带序号的快照
// Seq 在发起请求时分配，消费方据此判断新旧
type Snapshot struct {
	Seq       uint64
	Book      *types.OrderBookSnapshot
	FetchedAt time.Time
}

// Poller 订单簿轮询器
//
// 启动后立即拉取一次，之后按固定间隔拉取；Trigger 发出信号时跳过等待立即补拉。
// 拉取失败只记日志，消费方继续持有上一个成功的快照（下一个 tick 自愈）。
//
// 并发拉取的竞态处理：每个请求在发起时拿到单调递增的序号，
// 响应返回后只有序号大于最近已应用序号的才会被投递，迟到的旧响应直接丢弃。
// 这保证慢的定时响应不会覆盖更新的触发式响应。
type Poller struct {
	fetcher  StatsFetcher
	interval time.Duration
	trigger  *Trigger

	updates chan Snapshot

	issued atomic.Uint64 // 已分配的请求序号

	applyMu sync.Mutex
	applied uint64 // 最近投递的请求序号
}

// NewPoller 创建轮询器
// trigger 可以为 nil（纯定时轮询，比如 order-gen 不需要触发刷新）
func NewPoller(fetcher StatsFetcher, interval time.Duration, trigger *Trigger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		trigger:  trigger,
		updates:  make(chan Snapshot, 1),
	}
}

// Updates 快照投递通道
// 缓冲为 1 且投递时丢旧留新：消费方永远拿到最新的已完成快照
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// Run 运行轮询循环，阻塞直到 ctx 取消
// ctx 取消时定时器停止，不会留下后台轮询
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// 启动时立即拉一次
	p.fetchAsync(ctx)

	var triggerC <-chan struct{}
	if p.trigger != nil {
		triggerC = p.trigger.C()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.periodicFetch(ctx)
		case <-triggerC:
			p.fetchAsync(ctx)
		}
	}
}

// periodicFetch 定时全量拉取
// 先清掉积压的触发信号：这次拉取已经覆盖它们，紧接着不必再补拉一次
func (p *Poller) periodicFetch(ctx context.Context) {
	if p.trigger != nil {
		p.trigger.drain()
	}
	p.fetchAsync(ctx)
}

// fetchAsync 发起一次带序号的拉取
// 放到独立 goroutine 执行，慢响应不会阻塞轮询循环，重叠由序号规则裁决
func (p *Poller) fetchAsync(ctx context.Context) {
	seq := p.issued.Add(1)

	go func() {
		snap, err := p.fetcher.FetchStats(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warnf("拉取快照失败 (seq=%d): %v", seq, err)
			}
			return
		}

		p.apply(seq, snap)
	}()
}

// apply 只投递比最近已应用序号更新的响应，迟到的旧响应丢弃
// 加锁保证“判序 + 投递”是一个原子步骤，避免新旧响应交错入队
func (p *Poller) apply(seq uint64, snap *types.OrderBookSnapshot) {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	if seq <= p.applied {
		logger.Debugf("丢弃过期快照响应 (seq=%d, applied=%d)", seq, p.applied)
		return
	}
	p.applied = seq

	// 通道里可能还压着一个没被消费的旧快照，丢掉它再放新的
	select {
	case <-p.updates:
	default:
	}
	p.updates <- Snapshot{Seq: seq, Book: snap, FetchedAt: time.Now()}
}
