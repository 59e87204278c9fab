package client

// API 端点常量
const (
	// Orders
	EndpointCreateOrder = "/orders"
	EndpointCancelOrder = "/cancel"
	EndpointOrderStatus = "/order/"

	// Book
	EndpointClobStats = "/clob-stats"
)
