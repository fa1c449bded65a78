package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	websocket "github.com/wmdanor/wsengine"
	"github.com/wmdanor/wsengine/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	echo := flag.Bool("echo", false, "echo data frames back to the sender")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config failed: %s\n", err.Error())
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	l, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger failed: %s\n", err.Error())
		os.Exit(2)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := websocket.NewServer(cfg.ServerConfig(), handler(*echo), websocket.WithLogger(l))
	if err := srv.ListenAndServe(ctx); err != nil {
		l.Error("Server failed", zap.Error(err))
		l.Sync()
		os.Exit(1)
	}
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
	}

	return zcfg.Build()
}

func handler(echo bool) websocket.PayloadHandler {
	return websocket.PayloadHandlerFunc(func(c *websocket.Conn, payload []byte) {
		c.Logger().Info("Received message", zap.ByteString("data", payload))
		if !echo {
			return
		}

		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Logger().Warn("Failed to echo message back", zap.Error(err))
		}
	})
}
