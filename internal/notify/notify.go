// Package notify 把下单结果和各类错误翻译成待展示的临时通知。
package notify

import (
	"fmt"
	"time"

	"github.com/bookbot/goclob/clob/client"
	"github.com/bookbot/goclob/clob/types"
)

// Level 通知级别
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// 通知展示时长：失败类 3 秒，成交结果类 5 秒
const (
	ErrorTTL   = 3 * time.Second
	OutcomeTTL = 5 * time.Second
)

// Notice 一条临时通知
// 到期自动消失，不阻塞后续提交
type Notice struct {
	Level Level
	Text  string
	TTL   time.Duration
}

// Zero 判断是否为空通知
func (n Notice) Zero() bool {
	return n.Text == ""
}

// ForCreateResult 根据下单响应推导通知
//
// 三种结果按顺序判定，恰好命中一种：
// 全部成交 -> 成功；部分成交 -> 警告；完全未成交（挂单）-> 提示。
func ForCreateResult(req types.CreateOrderRequest, resp *types.CreateOrderResponse) Notice {
	switch {
	case resp.FilledQuantity == req.Quantity:
		return Notice{
			Level: LevelSuccess,
			Text: fmt.Sprintf("订单 #%d 全部成交 %d/%d @ %d",
				resp.OrderID, resp.FilledQuantity, req.Quantity, req.Price),
			TTL: OutcomeTTL,
		}
	case resp.FilledQuantity > 0:
		return Notice{
			Level: LevelWarn,
			Text: fmt.Sprintf("订单 #%d 部分成交 %d/%d，剩余 %d",
				resp.OrderID, resp.FilledQuantity, req.Quantity, resp.RemainingQuantity),
			TTL: OutcomeTTL,
		}
	default:
		return Notice{
			Level: LevelInfo,
			Text: fmt.Sprintf("订单 #%d 已挂单 %d @ %d",
				resp.OrderID, req.Quantity, req.Price),
			TTL: OutcomeTTL,
		}
	}
}

// ForCancelResult 根据撤单响应推导通知
func ForCancelResult(resp *types.CancelOrderResponse) Notice {
	return Notice{
		Level: LevelSuccess,
		Text:  fmt.Sprintf("订单 #%d 已撤单", resp.OrderID),
		TTL:   OutcomeTTL,
	}
}

// ForError 根据错误推导通知
// 校验错误和网络/解析错误都用失败时长展示
func ForError(err error) Notice {
	level := LevelError
	if client.IsValidation(err) {
		level = LevelWarn
	}
	return Notice{
		Level: level,
		Text:  err.Error(),
		TTL:   ErrorTTL,
	}
}
