package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devadigapratham/printbatch/api"
	"github.com/devadigapratham/printbatch/api/handlers"
	"github.com/devadigapratham/printbatch/config"
	"github.com/devadigapratham/printbatch/planstore"
	"github.com/devadigapratham/printbatch/raft"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "printbatch",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	// Create Raft data directory if it doesn't exist
	if err := os.MkdirAll(cfg.RaftDir, 0755); err != nil {
		return err
	}

	plans, err := planstore.Open(cfg.PlanDB, logger.Named("plans"))
	if err != nil {
		return err
	}
	defer plans.Close()

	peers := make([]raft.Peer, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peers = append(peers, raft.Peer{ID: p.ID, Addr: p.Addr})
	}

	node, err := raft.NewNode(&raft.Config{
		NodeID:    cfg.NodeID,
		RaftAddr:  cfg.RaftAddr,
		RaftDir:   cfg.RaftDir,
		Bootstrap: cfg.Bootstrap,
		Peers:     peers,
		Logger:    logger.Named("raft"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := node.Shutdown(); err != nil {
			logger.Error("error shutting down Raft node", "error", err)
		}
	}()

	transport := raft.NewTransport(node, logger.Named("membership"))

	if hclog.LevelFromString(cfg.LogLevel) > hclog.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := handlers.NewHandler(node, plans, logger.Named("api"))
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.SetupRouter(handler, transport.RaftHandler()),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.JoinAddr != "" {
		logger.Info("joining cluster", "addr", cfg.JoinAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := transport.JoinCluster(ctx, cfg.JoinAddr, cfg.NodeID, cfg.RaftAddr)
		cancel()
		if err != nil {
			// the node can still be added by an operator later
			logger.Warn("failed to join cluster", "error", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down HTTP server", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}
