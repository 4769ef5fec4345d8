package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Routes 管理与监控接口：
//
//	GET /healthz       存活检查
//	GET /metrics       运行指标 + 在线人数
//	GET /admin/config  当前棋盘配置
//	GET /board         当前渲染结果（仅 debug 模式）
//	GET /ws            WebSocket 游戏入口
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", s.HandleMetrics)
	r.Get("/admin/config", s.HandleAdminConfig)
	if s.debug {
		r.Get("/board", s.HandleBoard)
	}
	r.Get("/ws", s.HandleWS)
	return r
}

// HandleMetrics 输出运行指标
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"players": s.board.PlayerCount(),
		"metrics": s.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

// HandleAdminConfig 只读的服务配置
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"size":  s.board.Size(),
		"debug": s.debug,
	})
}

// HandleBoard 以纯文本返回当前棋盘渲染
func (s *Server) HandleBoard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.board.Render().String()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Warnw("encode response", "err", err)
	}
}
