package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/email"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logs"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logs.Logger.Fatalf("load config: %v", err)
	}
	if err := logs.Init(logs.Options{Level: cfg.Logs.Level, Format: cfg.Logs.Format, File: cfg.Logs.File}); err != nil {
		logs.Logger.Fatalf("init logger: %v", err)
	}
	if !cfg.Kafka.Enabled() {
		logs.Logger.Fatal("kafka brokers are not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	logs.Logger.WithField("topic", cfg.Kafka.NotificationsTopic).Info("notification worker started")
	if err := consumer.Consume(ctx, kafka.TicketEventHandler(sender.Send)); err != nil {
		logs.Logger.WithError(err).Error("consumer stopped")
		return
	}
	logs.Logger.Info("notification worker stopped")
}
