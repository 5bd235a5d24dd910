package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gatepass/internal/auth"
	"gatepass/internal/directory"
	gatehttp "gatepass/internal/http"
	"gatepass/internal/jwtauth"
	"gatepass/internal/pass/cache"
	passhandler "gatepass/internal/pass/handler"
	passmetrics "gatepass/internal/pass/metrics"
	"gatepass/internal/pass/qr"
	passservice "gatepass/internal/pass/service"
	passstore "gatepass/internal/pass/store"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/httpserver"
	"gatepass/internal/platform/logger"
	"gatepass/internal/platform/metrics"
	"gatepass/internal/platform/postgres"
	redisclient "gatepass/internal/platform/redis"
	reporthandler "gatepass/internal/report/handler"
	reportservice "gatepass/internal/report/service"
	reportstore "gatepass/internal/report/store"
	scanhandler "gatepass/internal/scan/handler"
	scanmetrics "gatepass/internal/scan/metrics"
	scanservice "gatepass/internal/scan/service"
	scanstore "gatepass/internal/scan/store"
	"gatepass/pkg/credentials"
	"gatepass/pkg/platform/audit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	var (
		passes    passstore.Store
		scans     scanstore.Store
		dir       directory.Store
		reports   reportstore.Queries
		checks    = map[string]gatehttp.HealthCheck{}
		closeFunc []func()
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		closeFunc = append(closeFunc, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		closeFunc = append(closeFunc, pool.Close)

		passes = passstore.NewPostgresStore(db)
		scans = scanstore.NewPostgresStore(db)
		dir = directory.NewPostgresStore(db)
		reports = reportstore.NewPostgresQueries(pool)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		passes = passstore.NewInMemoryStore()
		scans = scanstore.NewInMemoryStore()
		dir = directory.NewInMemoryStore()
		reports = reportstore.NewMemoryQueries(dir, passes, scans)
	}

	redisCli, err := redisclient.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisCli != nil {
		closeFunc = append(closeFunc, func() { _ = redisCli.Close() })
		checks["redis"] = redisCli.Health
	}

	var auditSink audit.Sink
	kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return err
	}
	if kafkaSink != nil {
		auditSink = kafkaSink
		closeFunc = append(closeFunc, func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = kafkaSink.Close(flushCtx)
		})
	} else {
		auditSink = audit.NewInMemoryStore()
	}
	auditlog := audit.NewPublisher(auditSink)

	tokens := jwtauth.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	passSvc, err := passservice.NewService(
		passes, dir, cache.New(redisCli), qr.Base64Encoder{},
		auditlog, passmetrics.New(), cfg.PhonePattern,
	)
	if err != nil {
		return err
	}
	scanSvc := scanservice.NewService(scans, passSvc, auditlog, scanmetrics.New())
	reportSvc := reportservice.NewService(reports, dir)
	authSvc := auth.NewService(dir, credentials.BcryptVerifier{}, tokens)

	router := gatehttp.NewRouter(log, metrics.New(), checks,
		auth.NewHandler(authSvc, log),
		passhandler.New(passSvc, log, tokens),
		scanhandler.New(scanSvc, log, tokens),
		reporthandler.New(reportSvc, log, tokens),
	)

	server := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err.Error())
	}
	for i := len(closeFunc) - 1; i >= 0; i-- {
		closeFunc[i]()
	}
	return nil
}
