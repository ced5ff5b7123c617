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

	"github.com/gin-gonic/gin"

	"telecom_billing_sim/internal/billing/cache"
	httpapi "telecom_billing_sim/internal/billing/handlers/http"
	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/orchestrator"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/billing/repo/memory"
	"telecom_billing_sim/internal/billing/repo/redisstore"
	"telecom_billing_sim/internal/billing/seed"
	"telecom_billing_sim/internal/billing/snapshot"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/config"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
	"telecom_billing_sim/internal/server"
)

const serviceName = "brt"

func main() {
	logger := logging.NewLoggerWithService(serviceName, os.Getenv("LOG_LEVEL"))
	config.LoadEnv(logger)

	cfg, err := config.LoadBRT()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	logger.Logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(serviceName)

	var clients repo.ClientRepository
	if cfg.RedisAddr != "" {
		rdb, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer rdb.Close()
		clients = redisstore.NewClientStore(rdb)
	} else {
		clients = memory.NewClientMemoryRepo()
	}

	remoteOpts := remote.Options{Logger: logger, Metrics: m}
	hrs := remote.NewHRSClient(cfg.HRSURL, remoteOpts)
	cdr := remote.NewCDRClient(cfg.CDRURL, remoteOpts)

	tariffs := cache.New[int64, model.Tariff](cache.Options{
		Name:       "tariffs",
		MaxEntries: cfg.CacheSize,
		TTL:        cfg.CacheTTL,
		Observer:   m,
	})

	var snapshots orchestrator.SnapshotPublisher = hrs
	var producer *bus.Producer
	if cfg.BusEnabled() {
		producer, err = bus.NewProducer(cfg.KafkaBrokers, serviceName, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create producer")
		}
		defer producer.Close()
		snapshots = snapshot.NewBusPublisher(producer)
	}

	orch := orchestrator.New(orchestrator.Config{
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
	}, clients, hrs, tariffs, snapshots, cdr, logger, m)
	defer orch.Close()

	if ts, err := hrs.Tariffs(ctx); err != nil {
		logger.WithError(err).Warn("Tariffs not preloaded; they will be fetched on demand")
	} else {
		orch.ApplyTariffSnapshot(ts)
	}

	seeded, err := seed.LoadFile(cfg.ClientsFile, seed.LoadClients)
	switch {
	case err != nil && os.IsNotExist(err) && cfg.RedisAddr != "":
		logger.WithField("file", cfg.ClientsFile).Info("No clients file; keeping stored clients")
	case err != nil:
		logger.WithError(err).Fatal("Failed to load clients")
	default:
		if err := orch.LoadClients(ctx, seeded); err != nil {
			logger.WithError(err).Fatal("Failed to store clients")
		}
	}

	if err := orch.PublishSnapshot(ctx); err != nil {
		logger.WithError(err).Warn("Initial client snapshot not delivered")
	}

	if cfg.BusEnabled() {
		group := cfg.KafkaGroup
		if group == "" {
			group = serviceName
		}
		consumer, err := bus.NewConsumer(cfg.KafkaBrokers, group, serviceName, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create consumer")
		}
		defer consumer.Close()

		consumer.AddHandler(bus.TopicCDR, orch.HandleMessage)
		consumer.AddHandler(bus.TopicTariffSnapshot, snapshot.TariffHandler(orch.ApplyTariffSnapshot, logger))

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.WithError(err).Error("Consumer stopped")
			}
		}()
	}

	router := httpapi.NewRouter(logger, m)
	httpapi.NewBRTHandler(orch, gin.Accounts{cfg.CRMUser: cfg.CRMPassword}).RegisterRoutes(router)

	if err := server.Run(ctx, cfg.ListenAddr, router, logger); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}
}
