package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"cadetportal/internal/adapters/email"
	web "cadetportal/internal/adapters/http"
	"cadetportal/internal/adapters/storage"
	accountStore "cadetportal/internal/adapters/storage/account"
	attendanceStore "cadetportal/internal/adapters/storage/attendance"
	cmsStore "cadetportal/internal/adapters/storage/cms"
	dutyReportStore "cadetportal/internal/adapters/storage/dutyreport"
	noticeStore "cadetportal/internal/adapters/storage/notice"
	registrationStore "cadetportal/internal/adapters/storage/registration"
	"cadetportal/internal/application/livesync"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/config"
	"cadetportal/internal/jobs"
	"cadetportal/internal/logging"
	"cadetportal/internal/observability"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	idleVisitor     = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logs, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer logs.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		slog.Warn("startup_event", "event", "sentry_disabled", "error", err)
	}
	defer flush()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		return err
	}
	schema, _ := storage.SchemaVersion(db)

	timedDB := storage.NewTimedDB(db, cfg.SlowQuery)
	stores := &web.Stores{
		Accounts:      accountStore.NewSQLiteStore(timedDB),
		Registrations: registrationStore.NewSQLiteStore(timedDB),
		Attendance:    attendanceStore.NewSQLiteStore(timedDB),
		Notices:       noticeStore.NewSQLiteStore(timedDB),
		Pages:         cmsStore.NewSQLiteStore(timedDB),
		DutyReports:   dutyReportStore.NewSQLiteStore(timedDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeded, err := orchestrators.ExecuteSeedSuperadmin(ctx, cfg.SeedSuperadminEmail, cfg.SeedSuperadminPassword, orchestrators.SeedSuperadminDeps{
		Accounts:   stores.Accounts,
		GenerateID: uuid.NewString,
		Now:        time.Now,
	})
	if err != nil {
		return err
	}
	if seeded {
		slog.Info("startup_event", "event", "superadmin_seeded", "email", cfg.SeedSuperadminEmail)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Delivery goes through the queue when Redis is configured.
	var delivery email.Sender = email.NewNoopSender()
	if cfg.ResendAPIKey != "" {
		delivery = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailReplyTo)
	} else {
		slog.Warn("startup_event", "event", "email_disabled", "reason", "RESEND_API_KEY is not set")
	}
	mailer := delivery

	hub := livesync.NewHub(web.LiveSources(stores))
	var peer livesync.Publisher
	var worker *email.Worker

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		bridge := livesync.NewRedisBridge(rdb, hub, uuid.NewString())
		peer = bridge
		g.Go(func() error { return bridge.Run(gctx) })

		connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := asynq.NewClient(connOpt)
		defer client.Close()
		mailer = email.NewQueueSender(client)
		worker = email.NewWorker(connOpt, delivery)
		if err := worker.Start(); err != nil {
			return err
		}
	}

	srv := web.NewServer(stores, web.Options{
		SecureCookies:      cfg.IsProd(),
		BaseURL:            cfg.BaseURL,
		CSRFKey:            cfg.CSRFKey,
		ResetTokenSecret:   cfg.ResetTokenSecret,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequest:        cfg.SlowRequest,
		Mailer:             mailer,
		Hub:                hub,
		Notifier:           livesync.NewNotifier(hub, peer),
		Health:             timedDB.PingContext,
	})

	runner := jobs.New(gctx)
	runner.Every(time.Minute, "purge_sessions", func(context.Context) error {
		if n := srv.Sessions().PurgeExpired(); n > 0 {
			slog.Debug("job_event", "event", "sessions_purged", "count", n)
		}
		return nil
	})
	runner.Every(time.Minute, "limiter_cleanup", func(context.Context) error {
		srv.Limiter().Cleanup(idleVisitor)
		return nil
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		slog.Info("startup_event", "event", "listening", "addr", cfg.HTTPAddr, "version", version, "env", cfg.Env, "schema", schema)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown_event", "event", "draining")
		// Closing the hub ends open event streams so Shutdown can finish.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_event", "event", "http_shutdown_failed", "error", err)
		}
		if worker != nil {
			worker.Shutdown()
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutdown_event", "event", "stopped")
	return nil
}
