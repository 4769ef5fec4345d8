package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"minesweeper/board"
)

// 固定文本
const (
	BoomMessage = "BOOM!"
	HelpMessage = "Commands: look | dig X Y | flag X Y | deflag X Y | help | bye"
)

// WelcomeMessage 欢迎语，players 包含自己
func WelcomeMessage(players int) string {
	return fmt.Sprintf("Welcome to Minesweeper. %d people are playing including you. Type 'help' for help.", players)
}

// Transport 会话底层连接：按行读取请求，按块写出响应
type Transport interface {
	// ReadLine 返回去掉行尾的一行；流结束时返回 io.EOF
	ReadLine() (string, error)
	// Send 写出一个完整的响应块
	Send(msg string) error
	Close() error
	RemoteAddr() string
}

// CloseReason 会话结束原因
type CloseReason string

const (
	CloseBye            CloseReason = "bye"
	CloseEOF            CloseReason = "eof"
	CloseInvalidRequest CloseReason = "invalid request"
	CloseBoom           CloseReason = "boom"
	CloseTransportError CloseReason = "transport error"
)

// Session 单个连接的生命周期，只由自己的协程持有
type Session struct {
	ID      string
	conn    Transport
	board   *board.Board
	debug   bool
	metrics *Metrics
}

// NewSession 创建会话；metrics 可为 nil
func NewSession(conn Transport, b *board.Board, debug bool, metrics *Metrics) *Session {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Session{
		ID:      uuid.NewString(),
		conn:    conn,
		board:   b,
		debug:   debug,
		metrics: metrics,
	}
}

// Run 运行请求循环直到会话结束。任何退出路径都会减少在线人数并关闭连接。
func (s *Session) Run() (reason CloseReason) {
	players := s.board.PlayerJoin()
	s.metrics.IncOpened()
	Log.Infow("session opened", "session", s.ID, "remote", s.conn.RemoteAddr(), "players", players)
	defer func() {
		s.board.PlayerLeave()
		_ = s.conn.Close()
		s.metrics.IncClosed()
		Log.Infow("session closed", "session", s.ID, "reason", string(reason))
	}()

	if err := s.send(WelcomeMessage(players) + "\n"); err != nil {
		return CloseTransportError
	}
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return CloseEOF
			}
			s.metrics.IncTransportErrors()
			Log.Warnw("read failed", "session", s.ID, "err", err)
			return CloseTransportError
		}
		req, err := ParseRequest(line)
		if err != nil {
			s.metrics.IncInvalid()
			Log.Debugw("invalid request", "session", s.ID, "err", err)
			return CloseInvalidRequest
		}
		s.metrics.IncRequests()
		if done, reason := s.handle(req); done {
			return reason
		}
	}
}

// handle 分发一条请求，done 为 true 表示会话应结束
func (s *Session) handle(req Request) (done bool, reason CloseReason) {
	var reply string
	switch req.Command {
	case CmdBye:
		return true, CloseBye
	case CmdHelp:
		reply = HelpMessage + "\n"
	case CmdLook:
		reply = s.board.Render().String()
	case CmdFlag:
		reply = s.board.Flag(req.X, req.Y).String()
	case CmdDeflag:
		reply = s.board.Unflag(req.X, req.Y).String()
	case CmdDig:
		r, boom := s.board.Reveal(req.X, req.Y)
		if !boom {
			reply = r.String()
			break
		}
		s.metrics.IncDetonations()
		Log.Infow("boom", "session", s.ID, "x", req.X, "y", req.Y, "debug", s.debug)
		if err := s.send(BoomMessage + "\n"); err != nil {
			return true, CloseTransportError
		}
		if !s.debug {
			return true, CloseBoom
		}
		return false, ""
	}
	if err := s.send(reply); err != nil {
		return true, CloseTransportError
	}
	return false, ""
}

func (s *Session) send(msg string) error {
	if err := s.conn.Send(msg); err != nil {
		s.metrics.IncTransportErrors()
		Log.Warnw("write failed", "session", s.ID, "err", err)
		return err
	}
	return nil
}
