package book

import "github.com/bookbot/goclob/clob/types"

// LevelKey 档位标识：方向 + 价格
// 用结构体组合而不是字符串拼接，买卖两侧天然不会冲突
type LevelKey struct {
	Side  types.Side
	Price int64
}

// Expansion 已展开档位的集合
//
// 按值替换使用：Toggle 返回新集合，旧集合保持不变，
// 依赖变更检测的消费方（TUI 重绘）因此能准确感知每次更新。
// 集合以价格为键，与档位当前有哪些挂单无关，快照刷新后展开状态保留。
type Expansion map[LevelKey]struct{}

// NewExpansion 创建空的展开集合
func NewExpansion() Expansion {
	return make(Expansion)
}

// Toggle 翻转一个档位的展开状态，返回新集合
func (e Expansion) Toggle(key LevelKey) Expansion {
	next := make(Expansion, len(e)+1)
	for k := range e {
		next[k] = struct{}{}
	}

	if _, ok := next[key]; ok {
		delete(next, key)
	} else {
		next[key] = struct{}{}
	}
	return next
}

// Expanded 查询一个档位是否已展开
func (e Expansion) Expanded(key LevelKey) bool {
	_, ok := e[key]
	return ok
}
