// Package journal 记录本机提交过的订单，方便撤单和对账。
package journal

import (
	"sync"
	"time"

	"github.com/bookbot/goclob/clob/types"
	"github.com/bookbot/goclob/pkg/logger"
	"github.com/bookbot/goclob/pkg/persistence"
)

// Entry 一条订单流水
type Entry struct {
	OrderID   uint64     `json:"order_id"`
	Side      types.Side `json:"side"`
	Price     int64      `json:"price"`
	Quantity  int64      `json:"quantity"`
	Filled    int64      `json:"filled"`
	Remaining int64      `json:"remaining"`
	Cancelled bool       `json:"cancelled"`
	CreatedAt time.Time  `json:"created_at"`
}

// Journal 本地订单流水
// 每次变更都整体落盘（JSON 文件），进程重启后订单号仍然可查可撤
type Journal struct {
	store   persistence.Store
	mu      sync.Mutex
	entries []Entry
}

// Open 打开订单流水，已有数据会被载入
func Open(svc persistence.Service, id string) *Journal {
	j := &Journal{
		store: svc.NewStore("journal", id),
	}

	if err := j.store.Load(&j.entries); err != nil && err != persistence.ErrNotExists {
		logger.Warnf("载入订单流水失败: %v", err)
	}
	return j
}

// Record 追加一条流水并落盘
func (j *Journal) Record(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, e)
	j.save()
}

// MarkCancelled 标记某个订单已撤销
func (j *Journal) MarkCancelled(orderID uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range j.entries {
		if j.entries[i].OrderID == orderID {
			j.entries[i].Cancelled = true
		}
	}
	j.save()
}

// Entries 返回流水副本（最新的在前）
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.entries))
	for i, e := range j.entries {
		out[len(j.entries)-1-i] = e
	}
	return out
}

// save 落盘（调用方必须持有锁）
func (j *Journal) save() {
	if err := j.store.Save(j.entries); err != nil {
		logger.Warnf("保存订单流水失败: %v", err)
	}
}
