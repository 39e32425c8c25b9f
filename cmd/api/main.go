package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/chat"
	"grocerbot/internal/config"
	"grocerbot/internal/db"
	"grocerbot/internal/intent"
	"grocerbot/internal/llm"
	"grocerbot/internal/logging"
	"grocerbot/internal/metrics"
	"grocerbot/internal/report"
	"grocerbot/internal/router"
	"grocerbot/internal/session"
	"grocerbot/internal/shop"
	"grocerbot/internal/snapshot"
	"grocerbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger := logging.New(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	m := metrics.New()

	// ───────────────────────── CATALOG ─────────────────────────
	cat, err := catalog.LoadOrCreate(cfg.PricesFile, logger)
	if err != nil {
		return err
	}
	engine := cart.NewEngine(cat)

	// ───────────────────────── SESSIONS ─────────────────────────
	var store session.Store
	if cfg.Session.RedisURL != "" {
		rs, err := session.NewRedisStoreFromURL(ctx, cfg.Session.RedisURL, cfg.Session.TTL)
		if err != nil {
			return err
		}
		defer rs.Close()
		store = rs
		logger.Info("session store: redis")
	} else {
		ms := session.NewMemoryStore(cfg.Session.TTL)
		go ms.RunSweeper(ctx, cfg.Session.SweepEvery, m.SessionsExpired)
		store = ms
		logger.Info("session store: memory", "ttl", cfg.Session.TTL)
	}

	snapshots, err := snapshot.NewFileWriter(cfg.SnapshotDir)
	if err != nil {
		return err
	}

	manager := session.NewManager(store, snapshots, logger.With("component", "session"))
	cookies := session.NewCookies(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieSecure)

	// ───────────────────────── ORDERS ─────────────────────────
	var orders shop.OrderRepository
	if cfg.Database.URL != "" {
		pool, err := db.ConnectPostgres(ctx, cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		orders = shop.NewPostgresOrderRepository(pool)
	} else {
		sqlDB, err := db.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		orders = shop.NewSQLiteOrderRepository(sqlDB)
		logger.Info("order archive: sqlite", "path", cfg.Database.SQLitePath)
	}

	// ───────────────────────── MODEL ─────────────────────────
	chatService := chat.NewService(cat, intent.NewExtractor(cat), engine, manager, logger.With("component", "chat")).
		WithMetrics(m)

	switch {
	case cfg.Gemini.APIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("gemini unavailable, using offline replies", "err", err)
			break
		}
		chatService.WithModel(gemini, cfg.Gemini.Params(), cfg.Gemini.Timeout)
		logger.Info("model ready", "provider", "gemini", "model", gemini.Model())
	case cfg.Llama.APIURL != "":
		llama, err := llm.NewLlamaClient(cfg.Llama.APIURL, cfg.Llama.APIKey, cfg.Llama.Model)
		if err != nil {
			logger.Warn("llama unavailable, using offline replies", "err", err)
			break
		}
		chatService.WithModel(llama, cfg.Gemini.Params(), cfg.Gemini.Timeout)
		logger.Info("model ready", "provider", "llama", "model", llama.Model())
	default:
		logger.Warn("no model configured, using offline replies")
	}

	// ───────────────────────── REPORTS ─────────────────────────
	reports, err := report.NewGenerator(cfg.PDFDir, snapshots, logger.With("component", "report"))
	if err != nil {
		return err
	}
	if r2cfg := cfg.R2.Storage(); r2cfg.Enabled() {
		r2, err := storage.NewR2Client(ctx, r2cfg)
		if err != nil {
			return err
		}
		reports.WithUploader(r2)
		logger.Info("pdf upload enabled", "bucket", r2cfg.Bucket)
	}

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(router.Deps{
		Logger:      logger,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
		Sessions:    manager,
		Cookies:     cookies,
		Catalog:     cat,
		Chat:        chatService,
		Shop:        shop.NewService(engine, orders, logger.With("component", "shop"), m),
		Reports:     reports,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API running", "addr", "http://localhost"+cfg.Addr(), "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
