package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired 后端拒绝凭证（401）。网关已清除会话，不重试
var ErrSessionExpired = errors.New("session expired")

// RequestError 非 2xx 非 401 响应。Detail 取自后端错误体的 detail 字段
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Detail)
}

// TransportError 请求未到达后端（连接失败、超时等），视为瞬时故障
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError 成功响应但响应体不是合法 JSON，按失败尝试处理
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
