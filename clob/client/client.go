package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/bookbot/goclob/pkg/ratelimit"
)

// Client CLOB 撮合服务客户端
type Client struct {
	http    *resty.Client
	host    string
	limiter *ratelimit.Manager
}

// Options 客户端可选配置
type Options struct {
	Timeout    time.Duration
	RetryCount int
}

// New 创建新的 CLOB 客户端
// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
func New(host string, opts *Options) *Client {
	host = strings.TrimSuffix(host, "/")

	timeout := 10 * time.Second
	retryCount := 2
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.RetryCount >= 0 {
			retryCount = opts.RetryCount
		}
	}

	httpClient := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 429 限流时优先使用 Retry-After 头
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 5 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{
		http:    httpClient,
		host:    host,
		limiter: ratelimit.NewManager(),
	}
}

// Host 返回服务地址
func (c *Client) Host() string {
	return c.host
}

// newRequest 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.http.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "goclob")
	return r
}

// do 发送请求并按统一规则处理响应
// 非 2xx 返回 StatusError（不假设失败响应体是 JSON）；
// 2xx 但响应体解析失败返回 DecodeError；网络层失败原样包装返回。
func (c *Client) do(ctx context.Context, method, endpoint, limitKey string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx, limitKey); err != nil {
		return errors.Wrap(err, "速率限制等待失败")
	}

	r := c.newRequest(ctx)
	if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}

	var resp *resty.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = r.Get(endpoint)
	case http.MethodPost:
		resp, err = r.Post(endpoint)
	default:
		return errors.Errorf("不支持的请求方法: %s", method)
	}
	if err != nil {
		return errors.Wrapf(err, "请求 %s 失败", endpoint)
	}

	if resp.IsError() {
		return &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &DecodeError{Endpoint: endpoint, Err: err}
		}
	}

	return nil
}
