package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bookbot/goclob/clob/client"
	"github.com/bookbot/goclob/clob/types"
)

func TestForCreateResultFullFill(t *testing.T) {
	req := types.CreateOrderRequest{BuyOrder: true, Price: 100, Quantity: 10}
	resp := &types.CreateOrderResponse{
		OrderID:           42,
		FilledQuantity:    10,
		RemainingQuantity: 0,
	}

	n := ForCreateResult(req, resp)
	if n.Level != LevelSuccess {
		t.Errorf("全部成交应为成功级别，实际 %v", n.Level)
	}
	if !strings.Contains(n.Text, "#42") || !strings.Contains(n.Text, "10/10") {
		t.Errorf("通知应包含单号和成交比例: %q", n.Text)
	}
	if !strings.Contains(n.Text, "100") {
		t.Errorf("通知应包含价格: %q", n.Text)
	}
	if n.TTL != OutcomeTTL {
		t.Errorf("成交结果展示时长期望 %v，实际 %v", OutcomeTTL, n.TTL)
	}
}

func TestForCreateResultPartialFill(t *testing.T) {
	req := types.CreateOrderRequest{BuyOrder: false, Price: 99, Quantity: 5}
	resp := &types.CreateOrderResponse{
		OrderID:           7,
		FilledQuantity:    2,
		RemainingQuantity: 3,
	}

	n := ForCreateResult(req, resp)
	if n.Level != LevelWarn {
		t.Errorf("部分成交应为警告级别，实际 %v", n.Level)
	}
	if !strings.Contains(n.Text, "2/5") || !strings.Contains(n.Text, "剩余 3") {
		t.Errorf("通知应包含成交比例和剩余量: %q", n.Text)
	}
}

func TestForCreateResultResting(t *testing.T) {
	req := types.CreateOrderRequest{BuyOrder: true, Price: 88, Quantity: 4}
	resp := &types.CreateOrderResponse{
		OrderID:           9,
		FilledQuantity:    0,
		RemainingQuantity: 4,
	}

	n := ForCreateResult(req, resp)
	if n.Level != LevelInfo {
		t.Errorf("挂单应为提示级别，实际 %v", n.Level)
	}
	if !strings.Contains(n.Text, "已挂单") {
		t.Errorf("通知应说明订单已挂入簿中: %q", n.Text)
	}
}

func TestForCancelResult(t *testing.T) {
	n := ForCancelResult(&types.CancelOrderResponse{OrderID: 5})
	if n.Level != LevelSuccess || !strings.Contains(n.Text, "#5") {
		t.Errorf("撤单通知错误: level=%v text=%q", n.Level, n.Text)
	}
}

func TestForErrorTTL(t *testing.T) {
	n := ForError(errors.New("连接被拒绝"))
	if n.Level != LevelError {
		t.Errorf("普通错误应为失败级别，实际 %v", n.Level)
	}
	if n.TTL != ErrorTTL {
		t.Errorf("错误展示时长期望 %v，实际 %v", ErrorTTL, n.TTL)
	}
}

func TestForErrorValidation(t *testing.T) {
	err := &client.ValidationError{Field: "price", Reason: "必须为正数"}
	n := ForError(err)
	// 本地校验失败降级为警告，不按网络故障处理
	if n.Level != LevelWarn {
		t.Errorf("校验错误应为警告级别，实际 %v", n.Level)
	}
}

func TestNoticeZero(t *testing.T) {
	var empty Notice
	if !empty.Zero() {
		t.Error("零值通知应判为空")
	}
	if (Notice{Text: "x", TTL: 3 * time.Second}).Zero() {
		t.Error("非空通知不应判为空")
	}
}
