package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	"github.com/BruksfildServices01/housecall-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/housecall-booking/internal/db"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/cache"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/payments"
	infraRepo "github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/storage"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/routes"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
	ucBarber "github.com/BruksfildServices01/housecall-booking/internal/usecase/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/validators"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)
	validators.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := dbpkg.NewDB(cfg)
	loc := timezone.Location(cfg.Timezone)

	// ======================================================
	// INFRA
	// ======================================================
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Get().Warn("redis unavailable, working hours are read from the database", "error", err)
		} else {
			rdb = client
			defer rdb.Close()
		}
	}
	hours := cache.NewWorkingHours(infraRepo.NewWorkingHoursGormRepository(db), rdb, cache.DefaultTTL)

	mailer := notify.NewMailer(cfg.SMTP)
	notifier := notify.NewDispatcher(mailer, cfg.SMTP.Timeout)
	auditDispatcher := audit.NewDispatcher(audit.New(db))

	var photos ucBarber.PhotoStore = storage.Disabled{}
	if cfg.S3.Enabled() {
		photos = storage.NewS3Store(cfg.S3)
	} else {
		logger.Get().Info("S3 not configured, barber photo uploads are disabled")
	}

	gateway, err := payments.New(cfg.MercadoPagoToken)
	if err != nil {
		logger.Fatal("failed to build payment gateway", "error", err)
	}

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	sched := routes.RegisterRoutes(r, routes.Deps{
		DB:           db,
		Config:       cfg,
		Location:     loc,
		WorkingHours: hours,
		Audit:        auditDispatcher,
		Notifier:     notifier,
		Photos:       photos,
		Gateway:      gateway,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Get().Info("server running", "addr", cfg.Addr(), "db_driver", cfg.DBDriver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sched.Start(gctx)
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Get().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Get().Error("server stopped with error", "error", err)
	}

	// drain queued emails and audit events after the last request
	notifier.Close()
	auditDispatcher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Get().Info("server stopped")
}
