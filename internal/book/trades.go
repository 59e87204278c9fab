package book

import "github.com/bookbot/goclob/clob/types"

// RecentTrades 取最近的成交记录，最新的在前
//
// 快照中的 transactions 按时间从旧到新交付，这里反转后截取前 limit 条。
// 不修改输入切片；快照不变时重复调用结果一致。
func RecentTrades(snap *types.OrderBookSnapshot, limit int) []types.Transaction {
	if snap == nil || limit <= 0 {
		return nil
	}

	txs := snap.Transactions
	n := len(txs)
	if n == 0 {
		return nil
	}

	if limit > n {
		limit = n
	}

	recent := make([]types.Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recent = append(recent, txs[i])
	}
	return recent
}
