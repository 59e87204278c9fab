package client

import (
	"errors"
	"fmt"
)

// ValidationError 客户端本地校验失败
// 这类错误在发起任何网络请求之前返回
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数校验失败: %s %s", e.Field, e.Reason)
}

// StatusError 服务端返回了非 2xx 状态
// 失败响应体不保证是 JSON，因此只携带状态文本
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP 错误: %s", e.Status)
}

// DecodeError 响应体无法解析成期望的结构
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("解析 %s 响应失败: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsValidation 判断是否为本地校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
