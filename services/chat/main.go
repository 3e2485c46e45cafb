package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/config"
	"github.com/lingochat/internal/handler"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/media"
	"github.com/lingochat/internal/push"
	"github.com/lingochat/internal/repository"
	"github.com/lingochat/internal/startup"
	"github.com/lingochat/internal/translate"
	"github.com/lingochat/internal/ws"
)

func main() {
	logger.SetPrefix("chat")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL (no external DB required)")
	reconcileOnly := flag.Bool("reconcile-only", false, "replay pending intents and exit")
	flag.Parse()

	if err := run(*dev, *reconcileOnly); err != nil {
		logger.Errorf("%v", err)
		// асинхронному логгеру нужно время дописать буфер
		time.Sleep(100 * time.Millisecond)
		os.Exit(1)
	}
}

func run(dev, reconcileOnly bool) error {
	logger.Info("starting chat service")
	cfg := config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if dev {
		db, err := startEmbeddedPostgres(cfg)
		if err != nil {
			return fmt.Errorf("embedded postgres: %w", err)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := db.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	ctx := context.Background()
	store, closeStore, err := startup.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()
	logger.Infof("store ready (%s)", cfg.Store.Backend)

	dict := translate.BuiltinDictionary()
	if cfg.DictionaryPath != "" {
		if err := dict.LoadFile(cfg.DictionaryPath); err != nil {
			logger.Errorf("dictionary %s: %v (builtin phrases only)", cfg.DictionaryPath, err)
		}
	}
	logger.Infof("dictionary: %d phrases", dict.Len())

	svc := chat.NewService(store, translate.NewStub(dict, nil), chat.Options{
		MaxPinned: cfg.MaxPinned,
		TypingTTL: cfg.TypingTTL,
	})
	n, err := svc.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if reconcileOnly {
		logger.Infof("reconcile-only: %d intents replayed", n)
		return nil
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := ws.NewHub(svc, cfg.MaxWSConnections)
	svc.AddNotifier(hub)
	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	var vapidPublic string
	var keys *push.VAPIDKeys
	if cfg.Push.Enabled {
		if keys, err = push.EnsureVAPIDKeys(cfg.Push.KeysFile); err != nil {
			logger.Errorf("push disabled: %v", err)
		} else {
			vapidPublic = keys.PublicKey
		}
	}
	notifier := push.NewNotifier(repository.NewPushRepository(store), svc, keys, cfg.Push.Subject)
	if notifier.Enabled() {
		svc.AddNotifier(notifier)
		logger.Info("web push enabled")
	}

	srv := &http.Server{
		Addr: cfg.ServerAddr,
		Handler: handler.NewRouter(handler.Deps{
			Config:         cfg,
			Service:        svc,
			Hub:            hub,
			Push:           notifier,
			VAPIDPublicKey: vapidPublic,
			Media:          media.NewStore(cfg.MediaDir),
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	hubCancel()
	hubWg.Wait()
	logger.Info("hub stopped")
	notifier.Wait()
	return serveErr
}

func startEmbeddedPostgres(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		port     = 5432
		user     = "lingochat"
		password = "lingochat_secret"
		database = "lingochat"
	)

	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "lingochat-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Store.Backend = config.BackendPostgres
	cfg.Store.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
