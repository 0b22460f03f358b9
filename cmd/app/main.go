package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nftmarket_go/internal/app"
	"nftmarket_go/internal/infra/feed"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background workers: event recorder, price oracle
	if err := bootstrap.StartBackground(ctx); err != nil {
		slog.Error("❌ Failed to start background workers", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. WebSocket event feed
	var feedSrv *feed.Server
	if addr := bootstrap.Config.Feed.ListenAddr; addr != "" {
		feedSrv = feed.NewServer(addr)
		if err := feedSrv.Start(ctx, bootstrap.Bus.Subscribe(256)); err != nil {
			slog.Error("Failed to start feed server", slog.Any("error", err))
		}
	}

	slog.InfoContext(ctx, "✨ NFT market fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	if feedSrv != nil {
		feedSrv.Stop()
	}
	bootstrap.Shutdown()
}
