// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New("cdr-gen")

	m.RecordsGenerated(5)
	m.RecordsGenerated(2)
	m.BatchShipped("file", nil)
	m.BatchShipped("bus", errors.New("down"))
	m.CacheHit("clients")
	m.CacheMiss("clients")
	m.CacheMiss("clients")

	assert.Equal(t, 7.0, testutil.ToFloat64(m.recordsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesShipped.WithLabelValues("bus", ResultFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("clients", "miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordsGenerated(1)
	m.CallProcessed(ResultOK)
	m.CycleBoundary()
	m.RemoteCall("hrs", ResultTimeout)
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("brt")
	m.CycleBoundary()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "brt_billing_cycle_boundaries_total 1"))
}
