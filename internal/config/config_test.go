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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCDRDefaults(t *testing.T) {
	cfg, err := LoadCDR()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Months)
	assert.Equal(t, 4, cfg.Partitions)
	assert.Equal(t, 10, cfg.QueueCapacity)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.BusEnabled())
}

func TestLoadCDRRejectsSmallQueue(t *testing.T) {
	t.Setenv("CDR_PARTITIONS", "8")
	t.Setenv("CDR_QUEUE_CAPACITY", "4")

	_, err := LoadCDR()
	assert.ErrorContains(t, err, "CDR_QUEUE_CAPACITY")
}

func TestLoadCDRRejectsBadBRTURL(t *testing.T) {
	t.Setenv("CDR_BRT_URL", "brt:8081")

	_, err := LoadCDR()
	assert.ErrorContains(t, err, "CDR_BRT_URL")
}

func TestLoadBRTFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BRT_TARIFF_CACHE_TTL", "30m")

	cfg, err := LoadBRT()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.BusEnabled())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheSize)
	assert.Equal(t, "admin", cfg.CRMUser)
}

func TestLoadHRSRejectsBadURL(t *testing.T) {
	t.Setenv("HRS_BRT_URL", "localhost:8081")

	_, err := LoadHRS()
	assert.ErrorContains(t, err, "HRS_BRT_URL")
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CDR_MONTHS=3\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("CDR_MONTHS", "")

	LoadEnv(nil)

	cfg, err := LoadCDR()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Months)
}
