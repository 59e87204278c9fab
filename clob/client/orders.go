package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookbot/goclob/clob/types"
)

// CreateOrder 提交订单
// price/quantity 非正时在本地直接拒绝，不发起网络请求
func (c *Client) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.CreateOrderResponse, error) {
	if req.Price <= 0 {
		return nil, &ValidationError{Field: "price", Reason: "必须大于 0"}
	}
	if req.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "必须大于 0"}
	}

	var resp types.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, EndpointCreateOrder, "orders:create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelOrder 取消订单
func (c *Client) CancelOrder(ctx context.Context, orderID uint64) (*types.CancelOrderResponse, error) {
	req := types.CancelOrderRequest{OrderID: orderID}

	var resp types.CancelOrderResponse
	if err := c.do(ctx, http.MethodPost, EndpointCancelOrder, "orders:cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrderStatus 查询订单状态
// 服务端对不存在（通常是已全部成交并移除）的订单返回 status=not_found
func (c *Client) GetOrderStatus(ctx context.Context, orderID uint64) (*types.OrderStatusResponse, error) {
	endpoint := fmt.Sprintf("%s%d", EndpointOrderStatus, orderID)

	var resp types.OrderStatusResponse
	if err := c.do(ctx, http.MethodGet, endpoint, "orders:status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
