package server

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn 基于 WebSocket 的 Transport：每条文本消息是一行请求，每个响应块是一条消息
type wsConn struct {
	ws   *websocket.Conn
	once sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	ws.SetReadLimit(4096)
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		mt, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		// 二进制消息按文本处理，ping/pong 由库内部处理
		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return trimEOL(string(payload)), nil
		}
	}
}

func (c *wsConn) Send(msg string) error {
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Close 发送正常关闭帧后关闭底层连接，可重复调用
func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.ws.Close()
	})
	return err
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS WebSocket 接入，协议与 TCP 相同
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已经写回了错误响应
		Log.Warnw("upgrade error", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.serveConn(newWSConn(ws))
}

