package server

import "sync"

// SessionManager 记录所有存活连接，便于关闭服务时统一断开
type SessionManager struct {
	mu    sync.Mutex
	conns map[string]Transport
}

func NewSessionManager() *SessionManager {
	return &SessionManager{conns: make(map[string]Transport)}
}

func (m *SessionManager) Add(id string, t Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[id] = t
}

func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Len 当前存活连接数
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// CloseAll 关闭所有连接；会话协程会在读取出错后自行退出并清理
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	conns := make([]Transport, 0, len(m.conns))
	for _, t := range m.conns {
		conns = append(conns, t)
	}
	m.mu.Unlock()
	for _, t := range conns {
		_ = t.Close()
	}
}
