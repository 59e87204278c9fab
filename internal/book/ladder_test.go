package book

import (
	"fmt"
	"sort"
	"testing"
	"testing/quick"

	"github.com/bookbot/goclob/clob/types"
)

func snapshotWith(buys, sells map[string][]types.Order) *types.OrderBookSnapshot {
	total := 0
	for _, orders := range buys {
		total += len(orders)
	}
	for _, orders := range sells {
		total += len(orders)
	}
	return &types.OrderBookSnapshot{
		TotalOrders: total,
		BuyOrders:   buys,
		SellOrders:  sells,
	}
}

func TestAggregateSellSide(t *testing.T) {
	snap := snapshotWith(nil, map[string][]types.Order{
		"101": {
			{BuyOrder: false, Price: 101, Quantity: 3, ID: 1},
			{BuyOrder: false, Price: 101, Quantity: 4, ID: 2},
		},
		"99": {
			{BuyOrder: false, Price: 99, Quantity: 5, ID: 3},
		},
	})

	levels := Aggregate(snap, types.SideSell)
	if len(levels) != 2 {
		t.Fatalf("期望 2 个档位，实际 %d", len(levels))
	}

	// 降序：101 在前
	if levels[0].Price != 101 || levels[0].TotalQuantity != 7 || levels[0].OrderCount != 2 {
		t.Errorf("首档错误: %+v", levels[0])
	}
	if levels[1].Price != 99 || levels[1].TotalQuantity != 5 || levels[1].OrderCount != 1 {
		t.Errorf("末档错误: %+v", levels[1])
	}
}

func TestSummarizeBestAskIsLowestSell(t *testing.T) {
	snap := snapshotWith(
		map[string][]types.Order{
			"95": {{BuyOrder: true, Price: 95, Quantity: 1}},
			"90": {{BuyOrder: true, Price: 90, Quantity: 2}},
		},
		map[string][]types.Order{
			"101": {{Price: 101, Quantity: 3}},
			"99":  {{Price: 99, Quantity: 5}},
		},
	)

	_, _, summary := Ladder(snap)
	if summary.BestBid != 95 {
		t.Errorf("最优买价期望 95，实际 %d", summary.BestBid)
	}
	// 卖档降序排列，最优卖价取末档（最低卖价）
	if summary.BestAsk != 99 {
		t.Errorf("最优卖价期望 99，实际 %d", summary.BestAsk)
	}
	if summary.Spread != 4 {
		t.Errorf("价差期望 4，实际 %d", summary.Spread)
	}
}

func TestSummarizeEmptySides(t *testing.T) {
	cases := []struct {
		name  string
		buys  map[string][]types.Order
		sells map[string][]types.Order
	}{
		{"两侧均空", nil, nil},
		{"只有买单", map[string][]types.Order{"90": {{Price: 90, Quantity: 1}}}, nil},
		{"只有卖单", nil, map[string][]types.Order{"99": {{Price: 99, Quantity: 1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, summary := Ladder(snapshotWith(tc.buys, tc.sells))
			// 任一侧为空时价差必须报 0，不能出现负数或单边价
			if summary.Spread != 0 {
				t.Errorf("价差期望 0，实际 %d", summary.Spread)
			}
		})
	}
}

func TestAggregateNilSnapshot(t *testing.T) {
	if levels := Aggregate(nil, types.SideBuy); levels != nil {
		t.Errorf("空快照期望 nil，实际 %v", levels)
	}
}

func TestAggregateSkipsMalformedPriceKey(t *testing.T) {
	snap := snapshotWith(map[string][]types.Order{
		"abc": {{BuyOrder: true, Price: 0, Quantity: 1}},
		"90":  {{BuyOrder: true, Price: 90, Quantity: 2}},
	}, nil)

	levels := Aggregate(snap, types.SideBuy)
	if len(levels) != 1 || levels[0].Price != 90 {
		t.Errorf("损坏的价格键应被跳过: %+v", levels)
	}
}

// **Property: 聚合一致性**
// 对于任意生成的挂单集合，档位价格严格降序，且各档数量之和等于原始挂单数量之和
func TestPropertyAggregateConsistency(t *testing.T) {
	property := func(prices []uint16, quantities []uint8) bool {
		// 输入域约束：价格取 1-999，数量取 1-255
		n := len(prices)
		if len(quantities) < n {
			n = len(quantities)
		}
		if n == 0 {
			return true
		}

		byPrice := make(map[string][]types.Order)
		var wantTotal int64
		for i := 0; i < n; i++ {
			price := int64(prices[i]%999) + 1
			qty := int64(quantities[i]) + 1
			key := fmt.Sprintf("%d", price)
			byPrice[key] = append(byPrice[key], types.Order{
				BuyOrder: true,
				Price:    price,
				Quantity: qty,
				ID:       uint64(i),
			})
			wantTotal += qty
		}

		levels := Aggregate(snapshotWith(byPrice, nil), types.SideBuy)

		// 属性 1：价格严格降序
		if !sort.SliceIsSorted(levels, func(i, j int) bool {
			return levels[i].Price > levels[j].Price
		}) {
			return false
		}
		for i := 1; i < len(levels); i++ {
			if levels[i].Price == levels[i-1].Price {
				return false // 同价必须合并为一档
			}
		}

		// 属性 2：数量守恒
		var gotTotal int64
		for _, lv := range levels {
			gotTotal += lv.TotalQuantity
		}
		return gotTotal == wantTotal
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 200}); err != nil {
		t.Errorf("聚合一致性属性验证失败: %v", err)
	}
}
