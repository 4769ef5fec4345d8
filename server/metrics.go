package server

import (
	"sync/atomic"
)

// Metrics 服务运行期的关键计数（用于监控与调试）
type Metrics struct {
	SessionsOpened  int64 // 建立的会话数
	SessionsClosed  int64 // 结束的会话数
	Requests        int64 // 合法请求数
	InvalidRequests int64 // 因语法错误断开的请求数
	Detonations     int64 // 踩雷次数
	TransportErrors int64 // 连接读写错误
}

func (m *Metrics) IncOpened() { atomic.AddInt64(&m.SessionsOpened, 1) }
func (m *Metrics) IncClosed() { atomic.AddInt64(&m.SessionsClosed, 1) }
func (m *Metrics) IncRequests() { atomic.AddInt64(&m.Requests, 1) }
func (m *Metrics) IncInvalid() { atomic.AddInt64(&m.InvalidRequests, 1) }
func (m *Metrics) IncDetonations() { atomic.AddInt64(&m.Detonations, 1) }
func (m *Metrics) IncTransportErrors() { atomic.AddInt64(&m.TransportErrors, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	opened := atomic.LoadInt64(&m.SessionsOpened)
	closed := atomic.LoadInt64(&m.SessionsClosed)
	return map[string]any{
		"sessions_opened":  opened,
		"sessions_closed":  closed,
		"sessions_active":  opened - closed,
		"requests":         atomic.LoadInt64(&m.Requests),
		"invalid_requests": atomic.LoadInt64(&m.InvalidRequests),
		"detonations":      atomic.LoadInt64(&m.Detonations),
		"transport_errors": atomic.LoadInt64(&m.TransportErrors),
	}
}
