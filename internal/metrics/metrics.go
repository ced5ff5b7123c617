// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package metrics exposes the Prometheus counters shared by the three
// services. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK        = "ok"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
	ResultMalformed = "malformed"
	ResultTimeout   = "timeout"
	ResultOpen      = "circuit_open"
)

type Metrics struct {
	registry *prometheus.Registry

	recordsGenerated prometheus.Counter
	batchesShipped   *prometheus.CounterVec
	callsProcessed   *prometheus.CounterVec
	cycleBoundaries  prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	remoteCalls      *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New(serviceName string) *Metrics {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		recordsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cdr_records_generated_total",
			Help:      "Call records produced by generators",
		}),
		batchesShipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cdr_batches_shipped_total",
			Help:      "CDR batches handed to sinks",
		}, []string{"sink", "result"}),
		callsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "calls_processed_total",
			Help:      "Calls processed from inbound batches",
		}, []string{"result"}),
		cycleBoundaries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "billing_cycle_boundaries_total",
			Help:      "Month boundary actions applied",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cache_lookups_total",
			Help:      "State cache lookups",
		}, []string{"cache", "result"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "remote_calls_total",
			Help:      "Calls to other services",
		}, []string{"target", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		m.recordsGenerated,
		m.batchesShipped,
		m.callsProcessed,
		m.cycleBoundaries,
		m.cacheLookups,
		m.remoteCalls,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordsGenerated(n int) {
	if m == nil {
		return
	}
	m.recordsGenerated.Add(float64(n))
}

func (m *Metrics) BatchShipped(sink string, err error) {
	if m == nil {
		return
	}
	m.batchesShipped.WithLabelValues(sink, resultOf(err)).Inc()
}

func (m *Metrics) CallProcessed(result string) {
	if m == nil {
		return
	}
	m.callsProcessed.WithLabelValues(result).Inc()
}

func (m *Metrics) CycleBoundary() {
	if m == nil {
		return
	}
	m.cycleBoundaries.Inc()
}

func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (m *Metrics) RemoteCall(target, result string) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(target, result).Inc()
}

// Middleware collects HTTP metrics per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Status(404) }
	}
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultOK
}
