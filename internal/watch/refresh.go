package watch

import (
	"sync/atomic"

	"github.com/bookbot/goclob/pkg/sigchan"
)

// Trigger 刷新触发器
//
// 单调递增的计数器：每次成功下单/撤单 Bump 一次，
// 轮询器监听到信号后立即补拉一次快照，不等下一个定时 tick。
// 信号通道非阻塞，连续多次 Bump 允许合并成一次唤醒。
type Trigger struct {
	counter atomic.Uint64
	signal  *sigchan.Chan
}

// NewTrigger 创建刷新触发器
func NewTrigger() *Trigger {
	return &Trigger{
		signal: sigchan.New(1),
	}
}

// Bump 计数器加一并发出信号
func (t *Trigger) Bump() {
	t.counter.Add(1)
	t.signal.Emit()
}

// Value 当前计数值
func (t *Trigger) Value() uint64 {
	return t.counter.Load()
}

// C 信号通道（供轮询器 select）
func (t *Trigger) C() <-chan struct{} {
	return t.signal.C()
}

// drain 清空积压的唤醒信号（计数不回退）
func (t *Trigger) drain() {
	t.signal.Drain()
}
