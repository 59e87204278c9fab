package client

import (
	"context"
	"net/http"

	"github.com/bookbot/goclob/clob/types"
)

// FetchStats 拉取订单簿完整快照
func (c *Client) FetchStats(ctx context.Context) (*types.OrderBookSnapshot, error) {
	var snap types.OrderBookSnapshot
	if err := c.do(ctx, http.MethodGet, EndpointClobStats, "stats:get", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
