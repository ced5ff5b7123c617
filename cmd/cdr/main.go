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

	"telecom_billing_sim/internal/billing/generator"
	httpapi "telecom_billing_sim/internal/billing/handlers/http"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo/memory"
	"telecom_billing_sim/internal/billing/seed"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/config"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
	"telecom_billing_sim/internal/server"
)

const serviceName = "cdr"

func main() {
	logger := logging.NewLoggerWithService(serviceName, os.Getenv("LOG_LEVEL"))
	config.LoadEnv(logger)

	cfg, err := config.LoadCDR()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	logger.Logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(serviceName)

	subscribers := memory.NewSubscriberMemoryRepo()
	list, err := seed.LoadFile(cfg.SubscribersFile, seed.LoadSubscribers)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load subscribers")
	}
	if err := subscribers.ReplaceAll(ctx, list); err != nil {
		logger.WithError(err).Fatal("Failed to store subscribers")
	}
	logger.WithField("subscribers", len(list)).Info("Subscribers loaded")

	sinks := generator.MultiSink{generator.NewFileSink(cfg.OutputDir)}
	switch {
	case cfg.BusEnabled():
		producer, err := bus.NewProducer(cfg.KafkaBrokers, serviceName, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create producer")
		}
		defer producer.Close()

		sinks = append(sinks, generator.NewBusSink(producer, bus.TopicCDR, generator.RetryConfig{
			MaxRetries: config.PublishMaxRetries,
			BaseDelay:  config.PublishBaseDelay,
			MaxDelay:   config.PublishMaxDelay,
		}))
	case cfg.BRTURL != "":
		brt := remote.NewBRTClient(cfg.BRTURL, remote.Options{Logger: logger, Metrics: m})
		sinks = append(sinks, generator.NewHTTPSink(brt))
	}

	coordinator, err := generator.NewCoordinator(generator.Config{
		Origin:        config.Origin,
		Months:        cfg.Months,
		Partitions:    cfg.Partitions,
		QueueCapacity: cfg.QueueCapacity,
		BatchSize:     cfg.BatchSize,
		Seed:          cfg.Seed,
	}, subscribers, memory.NewCDRMemoryRepo(), sinks, logger, m)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create generator")
	}

	router := httpapi.NewRouter(logger, m)
	httpapi.NewCDRHandler(ctx, coordinator, subscribers).RegisterRoutes(router)

	if err := server.Run(ctx, cfg.ListenAddr, router, logger); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}
}
