// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Common struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	// Empty disables the bus; services then talk over HTTP only.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaGroup   string   `envconfig:"KAFKA_GROUP"`
}

func (c Common) BusEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// CDR configures the call record generator.
type CDR struct {
	Common

	SubscribersFile string `envconfig:"CDR_SUBSCRIBERS_FILE" default:"data/subscribers.csv"`
	OutputDir       string `envconfig:"CDR_OUTPUT_DIR" default:"cdr_files"`
	Months          int    `envconfig:"CDR_MONTHS" default:"12"`
	Partitions      int    `envconfig:"CDR_PARTITIONS" default:"4"`
	QueueCapacity   int    `envconfig:"CDR_QUEUE_CAPACITY" default:"10"`
	BatchSize       int    `envconfig:"CDR_BATCH_SIZE" default:"10"`
	// 0 seeds from the clock.
	Seed uint64 `envconfig:"CDR_SEED"`
	// Batches go to brt over HTTP when the bus is off. Empty writes files only.
	BRTURL string `envconfig:"CDR_BRT_URL"`
}

// BRT configures the billing orchestrator.
type BRT struct {
	Common

	ClientsFile string `envconfig:"BRT_CLIENTS_FILE" default:"data/clients.csv"`
	// Empty keeps clients in memory.
	RedisAddr     string        `envconfig:"BRT_REDIS_ADDR"`
	RedisPassword string        `envconfig:"BRT_REDIS_PASSWORD"`
	HRSURL        string        `envconfig:"BRT_HRS_URL" default:"http://localhost:8082"`
	CDRURL        string        `envconfig:"BRT_CDR_URL" default:"http://localhost:8080"`
	Workers       int           `envconfig:"BRT_WORKERS" default:"4"`
	CacheSize     int           `envconfig:"BRT_TARIFF_CACHE_SIZE" default:"100"`
	CacheTTL      time.Duration `envconfig:"BRT_TARIFF_CACHE_TTL" default:"12h"`
	CRMUser       string        `envconfig:"BRT_CRM_USER" default:"admin"`
	CRMPassword   string        `envconfig:"BRT_CRM_PASSWORD" default:"admin"`
	Seed          uint64        `envconfig:"BRT_SEED"`
}

// HRS configures the rating engine.
type HRS struct {
	Common

	TariffsFile string        `envconfig:"HRS_TARIFFS_FILE" default:"data/tariffs.csv"`
	BRTURL      string        `envconfig:"HRS_BRT_URL" default:"http://localhost:8081"`
	CacheSize   int           `envconfig:"HRS_CLIENT_CACHE_SIZE" default:"1000"`
	CacheTTL    time.Duration `envconfig:"HRS_CLIENT_CACHE_TTL" default:"24h"`
	LockStripes int           `envconfig:"HRS_LOCK_STRIPES" default:"64"`
}

func LoadCDR() (*CDR, error) {
	var cfg CDR
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func LoadBRT() (*BRT, error) {
	var cfg BRT
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func LoadHRS() (*HRS, error) {
	var cfg HRS
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *CDR) Validate() error {
	var errs []error
	if c.Months < 1 {
		errs = append(errs, errors.New("CDR_MONTHS must be positive"))
	}
	if c.Partitions < 1 {
		errs = append(errs, errors.New("CDR_PARTITIONS must be positive"))
	}
	if c.BatchSize < 1 {
		errs = append(errs, errors.New("CDR_BATCH_SIZE must be positive"))
	}
	// каждый генератор кладёт в очередь ровно один список, до drain
	// координатор их не читает
	if c.QueueCapacity < c.Partitions {
		errs = append(errs, fmt.Errorf("CDR_QUEUE_CAPACITY (%d) must be >= CDR_PARTITIONS (%d)", c.QueueCapacity, c.Partitions))
	}
	if c.BRTURL != "" {
		if err := validateURL("CDR_BRT_URL", c.BRTURL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *BRT) Validate() error {
	var errs []error
	if err := validateURL("BRT_HRS_URL", c.HRSURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("BRT_CDR_URL", c.CDRURL); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("BRT_WORKERS must be positive"))
	}
	if strings.TrimSpace(c.CRMUser) == "" {
		errs = append(errs, errors.New("BRT_CRM_USER must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *HRS) Validate() error {
	var errs []error
	if err := validateURL("HRS_BRT_URL", c.BRTURL); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize < 1 {
		errs = append(errs, errors.New("HRS_CLIENT_CACHE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func validateURL(name, v string) error {
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return fmt.Errorf("%s must start with http:// or https://", name)
	}
	return nil
}
