package types

import "time"

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Timestamp 服务端时间戳（SystemTime 序列化格式：秒 + 纳秒）
type Timestamp struct {
	SecsSinceEpoch  int64 `json:"secs_since_epoch"`
	NanosSinceEpoch int64 `json:"nanos_since_epoch"`
}

// Time 转换为本地时间
// 展示层只用到秒级精度，纳秒部分仅保留用于潜在的排序需求
func (t Timestamp) Time() time.Time {
	return time.Unix(t.SecsSinceEpoch, t.NanosSinceEpoch)
}

// Clock 格式化为本地时钟时间（HH:MM:SS）
func (t Timestamp) Clock() string {
	return t.Time().Format("15:04:05")
}

// Order 簿上挂单（服务端生成，客户端只读）
type Order struct {
	BuyOrder    bool      `json:"buy_order"`
	Price       int64     `json:"price"`
	Quantity    int64     `json:"quantity"`
	ID          uint64    `json:"id"`
	TimeCreated Timestamp `json:"time_created"`
}

// Side 返回订单方向
func (o Order) Side() Side {
	if o.BuyOrder {
		return SideBuy
	}
	return SideSell
}

// Transaction 一笔已完成的撮合
type Transaction struct {
	Price    int64     `json:"price"`
	Quantity int64     `json:"quantity"`
	Time     Timestamp `json:"time"`
}

// OrderBookSnapshot 订单簿完整快照（/clob-stats 返回值）
//
// buy_orders / sell_orders 按价格字符串分组；transactions 按时间从旧到新。
// 快照是整体替换的值：每次轮询拿到一个完整快照，不做增量合并。
type OrderBookSnapshot struct {
	TotalOrders  int                `json:"total_orders"`
	BuyOrders    map[string][]Order `json:"buy_orders"`
	SellOrders   map[string][]Order `json:"sell_orders"`
	Transactions []Transaction      `json:"transactions"`
}

// SideOrders 返回指定方向的价格分组
func (s *OrderBookSnapshot) SideOrders(side Side) map[string][]Order {
	if side == SideBuy {
		return s.BuyOrders
	}
	return s.SellOrders
}

// CreateOrderRequest 创建订单请求（POST /orders）
type CreateOrderRequest struct {
	BuyOrder bool  `json:"buy_order"`
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// Side 返回请求的订单方向
func (r CreateOrderRequest) Side() Side {
	if r.BuyOrder {
		return SideBuy
	}
	return SideSell
}

// MatchDetail 下单时同步发生的单笔成交
type MatchDetail struct {
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp Timestamp `json:"timestamp"`
}

// CreateOrderResponse 创建订单响应
type CreateOrderResponse struct {
	Status            string        `json:"status"`
	OrderID           uint64        `json:"order_id"`
	FilledQuantity    int64         `json:"filled_quantity"`
	RemainingQuantity int64         `json:"remaining_quantity"`
	Matches           []MatchDetail `json:"matches"`
}

// CancelOrderRequest 取消订单请求（POST /cancel）
type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

// CancelOrderResponse 取消订单响应
type CancelOrderResponse struct {
	Status  string `json:"status"`
	OrderID uint64 `json:"order_id"`
}

// OrderStatusResponse 订单状态响应（GET /order/{id}）
// Status 取值：filled / partial / open / not_found
type OrderStatusResponse struct {
	OrderID         uint64 `json:"order_id"`
	Status          string `json:"status"`
	CurrentQuantity int64  `json:"current_quantity"`
	IsBuy           bool   `json:"is_buy"`
	Price           int64  `json:"price"`
}
