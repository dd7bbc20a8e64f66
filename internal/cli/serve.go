package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mhalvorsen/vouchsafe/internal/config"
	"github.com/mhalvorsen/vouchsafe/internal/engine"
	"github.com/mhalvorsen/vouchsafe/internal/inbox"
	"github.com/mhalvorsen/vouchsafe/internal/intent"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
	"github.com/mhalvorsen/vouchsafe/internal/server"
)

var (
	serveConfig string
	servePort   int
	serveDebug  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to config YAML (default ~/.vouchsafe/config.yaml)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the confirmation daemon",
	Long:  "Runs the decision queue, HTTP API, proposal inbox watcher, and the expiry sweeper in a single process.\nAgents submit proposals over HTTP or by dropping JSON files into the inbox directory.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, hash, err := config.LoadWithHash(serveConfig)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger, err := buildLogger(serveDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting vouchsafe daemon",
		zap.String("config_hash", hash),
		zap.Int("port", cfg.Server.Port),
	)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := seal.Open(seal.Config{
		Path:        cfg.Store.DBPath,
		JournalPath: cfg.Store.JournalPath,
		RecentCap:   cfg.Store.RecentCap,
	})
	if err != nil {
		return fmt.Errorf("failed to open seal store: %w", err)
	}
	defer store.Close()

	registry := intent.NewRegistry()
	registry.Register("pulse", intent.PulseHandler{})
	classifier := intent.NewClassifier(cfg.Intent, registry)

	eng := engine.New(engine.Config{
		MaxDefers:     cfg.Engine.MaxDefers,
		MaxPendingAge: cfg.Engine.MaxPendingAge,
		SweepInterval: cfg.Engine.SweepInterval,
	}, classifier, store, engine.LogEmitter{Logger: logger}, logger)

	dirs := inbox.DirConfig{Drop: cfg.Inbox.Drop, State: cfg.Inbox.State}
	if err := inbox.EnsureDirs(dirs); err != nil {
		return fmt.Errorf("failed to prepare inbox: %w", err)
	}
	ingestor := inbox.NewIngestor(dirs, eng, logger)
	handle := func(path string) {
		if err := ingestor.Ingest(path); err != nil {
			logger.Warn("proposal ingest failed", zap.String("path", path), zap.Error(err))
		}
	}

	// Proposals dropped while the daemon was down are picked up first.
	if err := inbox.ScanExisting(dirs.Drop, handle); err != nil {
		logger.Warn("inbox scan failed", zap.Error(err))
	}

	srv := server.New(server.Config{Port: cfg.Server.Port}, eng, store, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		eng.RunSweeper(gctx)
		return nil
	})
	g.Go(func() error {
		if cfg.Inbox.PollMode {
			return inbox.NewPollWatcher(dirs.Drop, handle, cfg.Inbox.PollInterval).Run(gctx)
		}
		w := inbox.NewDropWatcher(dirs.Drop, handle)
		if err := w.Run(gctx); err != nil {
			// Some filesystems have no inotify support. Fall back to polling.
			logger.Warn("inbox watcher failed, falling back to polling", zap.Error(err))
			return inbox.NewPollWatcher(dirs.Drop, handle, cfg.Inbox.PollInterval).Run(gctx)
		}
		return nil
	})

	return g.Wait()
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
