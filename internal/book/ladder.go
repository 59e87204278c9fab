// Package book 把轮询到的订单簿快照整理成可展示的阶梯视图。
//
// 这里只有纯函数：输入一个完整快照，输出按价格聚合排序后的档位。
// 不做任何网络请求，也不持有可变状态，同一快照多次计算结果一致。
package book

import (
	"sort"
	"strconv"

	"github.com/bookbot/goclob/clob/types"
)

// PriceLevel 一个价格档位：同一方向上同一价格的全部挂单聚合
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
	Orders        []types.Order // 档位内保持快照交付顺序，不再排序
}

// Summary 盘口概览
type Summary struct {
	BestBid int64
	BestAsk int64
	Spread  int64
}

// Aggregate 把指定方向的挂单按价格聚合成档位列表
//
// 档位按价格严格降序排列（买卖两侧统一约定：高价在前）。
// 展示层据此把卖单的最低价（列表末档）贴近盘口、买单的最高价放在最上。
func Aggregate(snap *types.OrderBookSnapshot, side types.Side) []PriceLevel {
	if snap == nil {
		return nil
	}

	byPrice := snap.SideOrders(side)
	levels := make([]PriceLevel, 0, len(byPrice))

	for key, orders := range byPrice {
		price, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			// 价格键由服务端的整数价格序列化而来，解析失败说明数据损坏，跳过该档
			continue
		}

		var total int64
		for _, o := range orders {
			total += o.Quantity
		}

		levels = append(levels, PriceLevel{
			Price:         price,
			TotalQuantity: total,
			OrderCount:    len(orders),
			Orders:        orders,
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Price > levels[j].Price
	})

	return levels
}

// Summarize 从聚合后的档位推导最优买价、最优卖价和价差
//
// 买档降序排列，首档即最优买价；卖档同样降序，末档（最低卖价）即最优卖价。
// 任一侧为空时对应值为 0，且此时价差报告为 0。
func Summarize(buyLevels, sellLevels []PriceLevel) Summary {
	var s Summary

	if len(buyLevels) > 0 {
		s.BestBid = buyLevels[0].Price
	}
	if len(sellLevels) > 0 {
		s.BestAsk = sellLevels[len(sellLevels)-1].Price
	}
	if s.BestBid > 0 && s.BestAsk > 0 {
		s.Spread = s.BestAsk - s.BestBid
	}

	return s
}

// Ladder 聚合两侧并计算盘口概览的便捷入口
func Ladder(snap *types.OrderBookSnapshot) (buys, sells []PriceLevel, summary Summary) {
	buys = Aggregate(snap, types.SideBuy)
	sells = Aggregate(snap, types.SideSell)
	summary = Summarize(buys, sells)
	return buys, sells, summary
}
