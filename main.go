package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"presencehub/server"
)

const releaseVersion = "0.1.0"

// presencehub 入口：读取配置，启动 HTTP + WebSocket 服务与会话事件循环
func main() {
	cfg := &Config{}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func serve(ctx context.Context, cfg *Config) (err error) {
	if err := server.InitLogger(server.LogOptions{FilePath: cfg.logFile, Verbose: cfg.verbose}); err != nil {
		return err
	}

	hub := server.NewHub(server.HubConfig{
		SpawnArea: server.SpawnArea{Min: cfg.spawnMin, Span: cfg.spawnSpan},
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	handler := server.NewRouter(hub, server.RouterOptions{
		StaticDir:      cfg.staticDir,
		PublicURL:      cfg.publicURL,
		AllowedOrigins: cfg.allowedOrigins,
		WS: server.WSOptions{
			SendBuffer: cfg.sendBuffer,
			PongWait:   cfg.pongWait,
		},
	})

	// 先同步绑定端口：端口被占用等错误直接终止启动
	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		server.Log.Infof("presencehub v%s listening on http://%s/", releaseVersion, ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case <-ctx.Done():
		server.Log.Info("Shutting down...")
	case err = <-errs:
		server.Log.Errorw("server stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	// 关闭所有 WebSocket 连接并清空注册表
	stopHub()
	if cfg.logFile != "" {
		err = multierr.Append(err, server.SyncLogger())
	}
	return err
}
