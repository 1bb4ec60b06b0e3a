package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sharedspace/internal/config"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/notifier"
	"sharedspace/internal/rabbitmq"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadNotifier()
	log := setupLogger(cfg.Env)

	startConsumer(ctx, cfg, log)
}

func startConsumer(ctx context.Context, cfg *config.NotifierConfig, log *slog.Logger) {
	log.Info("starting notifier", slog.String("env", cfg.Env))

	r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to init rabbitmq", sl.Err(err))
		return
	}
	defer r.Close()

	m := &notifier.Mailer{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		err := r.StartReading(ctx, func(msg []byte) error {
			var event models.BookingEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				log.Error("failed to unmarshal message", sl.Err(err))
				return err
			}

			subject, text := notifier.CreateMessage(event)

			if err := m.Send(cfg.Email.AdministratorEmail, subject, text); err != nil {
				log.Error("failed to send message", sl.Err(err), slog.String("transaction_id", event.TransactionID))
				return err
			}

			log.Info("message sent successfully",
				slog.String("kind", event.Kind),
				slog.String("transaction_id", event.TransactionID),
			)

			return nil
		})
		if err != nil {
			log.Error("failed to start reading", sl.Err(err))
			return
		}
	}()

	log.Info("notifier successfully started")

	select {
	case <-ctx.Done():
		log.Info("shutting down consumer...")
		<-done
	case <-done:
		log.Info("notifier finished the work")
	}

	log.Info("notifier gracefully stopped")
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
