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

	ssogrpc "sharedspace/internal/clients/sso/grpc"
	"sharedspace/internal/config"
	"sharedspace/internal/http-server/router"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/lib/obs"
	"sharedspace/internal/rabbitmq"
	"sharedspace/internal/services/availability"
	bookingsrv "sharedspace/internal/services/booking"
	"sharedspace/internal/services/payment"
	"sharedspace/internal/services/transaction"
	"sharedspace/internal/services/wallet"
	"sharedspace/internal/storage/postgres"
	"sharedspace/internal/storage/redis"

	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	log.Info("starting sharedspace", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("service stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("sharedspace gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// * Tracing
	shutdownTracer, err := obs.InitTracer(initCtx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("failed to flush traces", sl.Err(err))
		}
	}()

	// * RabbitMQ
	rabbitMQClient, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.QueueName)
	if err != nil {
		return err
	}
	defer rabbitMQClient.Close()

	// * Postgres
	postgresRepo, err := postgres.Connect(initCtx, cfg)
	if err != nil {
		return err
	}
	defer postgresRepo.Close()

	// * Redis
	redisRepo, err := redis.New(initCtx, cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer redisRepo.Close()

	// * SSO grpc client
	ssoClient, err := ssogrpc.New(
		log,
		cfg.Clients.SSO.Address,
		cfg.Clients.SSO.Timeout,
		cfg.Clients.SSO.RetriesCount,
	)
	if err != nil {
		return err
	}
	defer ssoClient.Close()

	slots := availability.New(log, redisRepo, cfg.Booking.Location())
	if cfg.Booking.SeedDemo {
		if _, err := slots.SeedDemo(initCtx, cfg.Booking.DemoSpaceID); err != nil {
			log.Warn("failed to seed demo slots", sl.Err(err))
		}
	}

	transactions := transaction.New(log, postgresRepo, cfg.Payments.WalletDelay, cfg.Payments.CardDelay)
	payments := payment.New(log, redisRepo, cfg.Payments.PublishableKey, cfg.Payments.IntentTTL)
	wallets := wallet.New(log, redisRepo)
	bookingService := bookingsrv.NewBookingService(
		log, slots, transactions, payments, wallets, rabbitMQClient, ssoClient,
	)

	log.Info("payments configured", slog.String("mode", payments.Mode()))

	// * Routing
	handler := router.New(log, router.Deps{
		AppSecret:    cfg.AppSecret,
		Slots:        slots,
		Bookings:     bookingService,
		Transactions: transactions,
		Payments:     payments,
		Wallets:      wallets,
		Roles:        ssoClient,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", slog.String("addr", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		log.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
