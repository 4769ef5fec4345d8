package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"minesweeper/board"
)

// lineConn 基于 TCP 流的 Transport
type lineConn struct {
	conn net.Conn
	r    *bufio.Reader
	once sync.Once
}

func newLineConn(conn net.Conn) *lineConn {
	return &lineConn{conn: conn, r: bufio.NewReader(conn)}
}

func (c *lineConn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		// 最后一行可以没有换行
		if errors.Is(err, io.EOF) && line != "" {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

func (c *lineConn) Send(msg string) error {
	_, err := io.WriteString(c.conn, msg)
	return err
}

// Close 可重复调用
func (c *lineConn) Close() error {
	var err error
	c.once.Do(func() { err = c.conn.Close() })
	return err
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func trimEOL(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}

// Server 持有共享棋盘，负责接受连接并为每个连接启动会话
type Server struct {
	board    *board.Board
	debug    bool
	metrics  *Metrics
	sessions *SessionManager
}

// NewServer 创建服务；所有会话共享同一个棋盘
func NewServer(b *board.Board, debug bool) *Server {
	return &Server{
		board:    b,
		debug:    debug,
		metrics:  &Metrics{},
		sessions: NewSessionManager(),
	}
}

// Board 共享棋盘
func (s *Server) Board() *board.Board { return s.board }

// Metrics 运行指标
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe 在 addr 上监听 TCP 并服务，直到 ctx 取消或监听失败
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	Log.Infof("Minesweeper listening on %s (size=%d debug=%v)", ln.Addr(), s.board.Size(), s.debug)
	return s.Serve(ctx, ln)
}

// Serve 接受循环。ctx 取消时关闭监听与所有会话并返回 nil；
// 其他 Accept 错误视为监听失败并返回。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()
	defer s.sessions.CloseAll()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			_ = ln.Close()
			return fmt.Errorf("accept: %w", err)
		}
		go s.serveConn(newLineConn(conn))
	}
}

// serveConn 运行一个会话；会话内的任何错误（包括 panic）都不会影响其他连接
func (s *Server) serveConn(t Transport) {
	sess := NewSession(t, s.board, s.debug, s.metrics)
	s.sessions.Add(sess.ID, t)
	defer s.sessions.Remove(sess.ID)
	defer func() {
		if r := recover(); r != nil {
			Log.Errorw("session panic", "session", sess.ID, "panic", r)
			_ = t.Close()
		}
	}()
	sess.Run()
}
