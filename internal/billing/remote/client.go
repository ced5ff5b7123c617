// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package remote holds the HTTP clients the services use to talk to each
// other. Every call has a bounded timeout and goes through a circuit breaker.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"telecom_billing_sim/internal/config"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
)

type Options struct {
	Timeout          time.Duration
	FailureThreshold int
	OpenTimeout      time.Duration
	Logger           logging.Logger
	Metrics          *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = config.RemoteTimeout
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = config.CBFailureThreshold
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = config.CBTimeout
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// client is the shared resty + breaker core of the typed clients.
type client struct {
	target  string
	baseURL string
	http    *resty.Client
	cb      *gobreaker.CircuitBreaker
	logger  logging.Logger
	metrics *metrics.Metrics
}

func newClient(target, baseURL string, opts Options) *client {
	opts = opts.withDefaults()
	logger := opts.Logger.WithField("target", target)

	settings := gobreaker.Settings{
		Name:        target,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(opts.FailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"from": from.String(),
				"to":   to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &client{
		target:  target,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New().SetTimeout(opts.Timeout),
		cb:      gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

type call struct {
	method      string
	path        string
	query       map[string]string
	body        any
	contentType string
}

// do runs one request. 5xx and transport errors count against the breaker,
// 4xx does not.
func (c *client) do(ctx context.Context, rq call, out any) error {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")
		if rq.query != nil {
			req.SetQueryParams(rq.query)
		}
		if rq.body != nil {
			if rq.contentType != "" {
				req.SetHeader("Content-Type", rq.contentType)
			}
			req.SetBody(rq.body)
		}

		resp, err := req.Execute(rq.method, c.baseURL+rq.path)
		if err != nil {
			return nil, &ConnectionError{Target: c.target, Cause: err}
		}

		code := resp.StatusCode()
		if code >= 500 {
			return nil, c.apiError(code, resp.Body())
		}
		if code < 200 || code >= 300 {
			// не считаем в брейкер
			return c.apiError(code, resp.Body()), nil
		}
		return resp.Body(), nil
	})

	entry := c.logger.WithFields(logrus.Fields{
		"method":     rq.method,
		"path":       rq.path,
		"latency_ms": time.Since(start).Milliseconds(),
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.RemoteCall(c.target, metrics.ResultOpen)
			return fmt.Errorf("%s: %w", c.target, ErrCircuitOpen)
		}
		if errors.Is(err, ErrRemoteTimeout) {
			c.metrics.RemoteCall(c.target, metrics.ResultTimeout)
		} else {
			c.metrics.RemoteCall(c.target, metrics.ResultFailed)
		}
		entry.WithError(err).Error("remote call failed")
		return err
	}

	if apiErr, ok := result.(*APIError); ok {
		c.metrics.RemoteCall(c.target, metrics.ResultFailed)
		entry.WithField("status", apiErr.StatusCode).Debug("remote call rejected")
		return apiErr
	}

	c.metrics.RemoteCall(c.target, metrics.ResultOK)
	entry.Debug("remote call ok")

	body, _ := result.([]byte)
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, c.target, err)
	}
	return nil
}

func (c *client) apiError(code int, body []byte) *APIError {
	var eb struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		msg = eb.Error.Message
	}
	return &APIError{Target: c.target, StatusCode: code, Message: msg}
}
