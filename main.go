package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minesweeper/board"
	"minesweeper/server"
)

// Minesweeper 入口：加载配置与棋盘，启动 TCP 服务（以及可选的 HTTP 管理/WebSocket 接口）
func main() {
	getenv, err := server.EnvLookup(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := server.LoadConfig(os.Args[1:], getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, server.Usage)
		os.Exit(2)
	}

	if err := server.InitLogger(cfg.LogFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	b, err := newBoard(cfg)
	if err != nil {
		server.Log.Fatalf("board: %v", err)
	}
	srv := server.NewServer(b, cfg.Debug)

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Routes()}
		go func() {
			server.Log.Infof("admin listening on %s", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				server.Log.Errorf("admin listen: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
		server.Log.Fatalf("listen: %v", err)
	}
	server.Log.Info("Shutting down...")
}

func newBoard(cfg server.Config) (*board.Board, error) {
	if cfg.File != "" {
		return board.LoadFile(cfg.File)
	}
	return board.New(cfg.Size)
}
