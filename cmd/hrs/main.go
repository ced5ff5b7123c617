// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"telecom_billing_sim/internal/billing/cache"
	httpapi "telecom_billing_sim/internal/billing/handlers/http"
	"telecom_billing_sim/internal/billing/keylock"
	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/rating"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo/memory"
	"telecom_billing_sim/internal/billing/seed"
	"telecom_billing_sim/internal/billing/snapshot"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/config"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
	"telecom_billing_sim/internal/server"
)

const serviceName = "hrs"

type tariffPublisher interface {
	PublishTariffs(ctx context.Context, tariffs []model.Tariff) error
}

func main() {
	logger := logging.NewLoggerWithService(serviceName, os.Getenv("LOG_LEVEL"))
	config.LoadEnv(logger)

	cfg, err := config.LoadHRS()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	logger.Logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(serviceName)

	tariffs := memory.NewTariffMemoryRepo()
	list, err := seed.LoadFile(cfg.TariffsFile, seed.LoadTariffs)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load tariffs")
	}
	if err := tariffs.ReplaceAll(ctx, list); err != nil {
		logger.WithError(err).Fatal("Failed to store tariffs")
	}
	logger.WithField("tariffs", len(list)).Info("Tariffs loaded")

	brt := remote.NewBRTClient(cfg.BRTURL, remote.Options{Logger: logger, Metrics: m})

	clients := cache.New[string, model.ClientState](cache.Options{
		Name:       "clients",
		MaxEntries: cfg.CacheSize,
		TTL:        cfg.CacheTTL,
		Observer:   m,
	})
	engine := rating.NewEngine(clients, tariffs, brt, keylock.New(cfg.LockStripes), logger)

	var publisher tariffPublisher = brt
	if cfg.BusEnabled() {
		producer, err := bus.NewProducer(cfg.KafkaBrokers, serviceName, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create producer")
		}
		defer producer.Close()
		publisher = snapshot.NewBusPublisher(producer)

		group := cfg.KafkaGroup
		if group == "" {
			group = serviceName
		}
		consumer, err := bus.NewConsumer(cfg.KafkaBrokers, group, serviceName, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create consumer")
		}
		defer consumer.Close()

		consumer.AddHandler(bus.TopicClientSnapshot, snapshot.ClientHandler(engine.ApplySnapshot, logger))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.WithError(err).Error("Consumer stopped")
			}
		}()
	}

	publishTariffs := func(ctx context.Context, ts []model.Tariff) {
		if err := publisher.PublishTariffs(ctx, ts); err != nil {
			logger.WithError(err).Warn("Tariff snapshot not delivered")
		}
	}
	publishTariffs(ctx, list)

	router := httpapi.NewRouter(logger, m)
	httpapi.NewHRSHandler(engine, tariffs, publishTariffs).RegisterRoutes(router)

	if err := server.Run(ctx, cfg.ListenAddr, router, logger); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}
}
