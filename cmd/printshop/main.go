package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ivanpodgorny/printshop/internal/client"
	"github.com/ivanpodgorny/printshop/internal/config"
	"github.com/ivanpodgorny/printshop/internal/entity"
	"github.com/ivanpodgorny/printshop/internal/handler"
	"github.com/ivanpodgorny/printshop/internal/identifier"
	"github.com/ivanpodgorny/printshop/internal/lock"
	"github.com/ivanpodgorny/printshop/internal/middleware"
	"github.com/ivanpodgorny/printshop/internal/migrations"
	"github.com/ivanpodgorny/printshop/internal/repository"
	"github.com/ivanpodgorny/printshop/internal/security"
	"github.com/ivanpodgorny/printshop/internal/service"
	"github.com/ivanpodgorny/printshop/internal/storage"
	"github.com/ivanpodgorny/printshop/internal/validator"
	"github.com/ivanpodgorny/printshop/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := Execute(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func Execute() error {
	cfg, err := config.NewBuilder().LoadFlags().LoadEnv().Build()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel())
	if err != nil {
		return err
	}

	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	db, err := sql.Open("pgx", cfg.DatabaseURI())
	if err != nil {
		return err
	}

	defer func(db *sql.DB) {
		err = db.Close()
	}(db)

	if err := migrations.Up(db); err != nil {
		return err
	}

	validationEngine, err := validator.NewEngine()
	if err != nil {
		return err
	}

	var locker service.Locker = lock.Noop{}
	if cfg.RedisAddr() != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		defer func(rdb *redis.Client) {
			_ = rdb.Close()
		}(rdb)

		locker = lock.NewRedis(rdb, 0)
		logger.Info("redis order lock enabled", zap.String("addr", cfg.RedisAddr()))
	}

	var (
		ctx, cancel = context.WithCancel(context.Background())
		r           = chi.NewRouter()
		v           = validator.New(validationEngine)
		wg          = &sync.WaitGroup{}
		pcq         = make(chan entity.PaymentConfirmation, 8)
		or          = repository.NewOrder(db)
		fp          = storage.NewPlacement(cfg.UploadDir())
		gw          = client.NewCashfree(client.CashfreeConfig{
			BaseURL:      cfg.GatewayBaseURL(),
			ClientID:     cfg.GatewayClientID(),
			ClientSecret: cfg.GatewayClientSecret(),
			APIVersion:   cfg.GatewayAPIVersion(),
			ReturnURL:    cfg.GatewayReturnURL(),
			Timeout:      cfg.GatewayTimeout(),
		}, security.NewWebhookSigner(cfg.WebhookSecret()))
		os = service.NewOrder(
			or,
			identifier.NewGenerator(or),
			fp,
			gw,
			locker,
			pcq,
			logger,
			service.Settings{
				Currency: cfg.GatewayCurrency(),
				Customer: entity.Customer{
					Name:  "Guest",
					Email: "guest@example.com",
					Phone: cfg.GatewayCustomerPhone(),
				},
				StorageTimeout: cfg.StorageTimeout(),
				GatewayTimeout: cfg.GatewayTimeout(),
			},
		)
		pcw = worker.NewPaymentConfirmer(os, pcq, wg, cfg.ConfirmWorkers(), logger)
		aa  = security.NewAdminAuthenticator(
			cfg.AdminLogin(),
			cfg.AdminPasswordHash(),
			security.NewArgonHasher(security.DefaultHashConfig()),
		)
		oh = handler.NewOrder(os, v, logger)
		ah = handler.NewAdmin(os, fp)
	)

	defer func() {
		cancel()
		wg.Wait()
	}()

	pcw.Do(ctx)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", oh.Create)
		r.Get("/orders/{trackingId}/verify", oh.Verify)
		r.Post("/webhook", oh.Webhook)
		r.Post("/quote", oh.Quote)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(aa))

			r.Get("/orders/{code}", ah.Get)
			r.Get("/orders/{code}/files/{name}", ah.Download)
		})
	})

	logger.Info("server started", zap.String("addr", cfg.ServerAddress()))
	err = http.ListenAndServe(cfg.ServerAddress(), r)

	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl

	return zcfg.Build()
}
