// Package main provides the match server binary: the WebSocket coordinator
// for live matches plus the read-only status endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/config"
	"github.com/streamerquiz/matchserver/internal/coordinator"
	"github.com/streamerquiz/matchserver/internal/httpapi"
	"github.com/streamerquiz/matchserver/internal/hub"
	"github.com/streamerquiz/matchserver/internal/match"
	"github.com/streamerquiz/matchserver/internal/observability"
	"github.com/streamerquiz/matchserver/internal/random"
	"github.com/streamerquiz/matchserver/internal/server"
	"github.com/streamerquiz/matchserver/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting match server",
		zap.String("ws_addr", cfg.WebSocket.Addr()),
		zap.String("status_addr", cfg.Status.Addr()),
	)

	generator := match.NewGenerator(random.NewCryptoSource())
	store := match.NewStore(generator, cfg.Match.CodeRetryCap)
	connHub := hub.New(logger)
	coord := coordinator.New(store, connHub, logger)
	acceptor := ws.NewAcceptor(cfg.WebSocket, connHub, coord, logger)
	status := httpapi.NewServer(cfg.Status, store, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})
	lifecycle.Add("status", &server.FuncService{
		StartFn: status.ListenAndServe,
		StopFn:  status.Stop,
	})

	logger.Info("match server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
