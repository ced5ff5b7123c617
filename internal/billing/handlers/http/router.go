// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/generator"
	"telecom_billing_sim/internal/billing/orchestrator"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
)

// NewRouter builds the common gin engine of every service.
func NewRouter(logger logging.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), m.Middleware(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, OKResponse{Status: "ok"})
	})
	if m != nil {
		r.GET("/metrics", m.Handler())
	}
	return r
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			return
		}
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request")
	}
}

var errNoUpload = errors.New("no upload in request")

// uploadBody returns the uploaded file: the named part of a multipart form or
// the raw body for any other content type.
func uploadBody(c *gin.Context, field string) (io.ReadCloser, error) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		fh, err := c.FormFile(field)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", errNoUpload, field, err)
		}
		return fh.Open()
	}

	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return nil, errNoUpload
	}
	return c.Request.Body, nil
}

func writeErr(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: msg,
		},
	})
}

// writeDomainErr maps domain and remote errors to a status.
func writeDomainErr(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, context.Canceled):
		status, code = 499, "request_canceled"
	case errors.Is(err, repo.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, repo.ErrExists):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, orchestrator.ErrSameTariff):
		status, code = http.StatusConflict, "same_tariff"
	case errors.Is(err, generator.ErrAlreadyRunning):
		status, code = http.StatusConflict, "already_running"
	case errors.Is(err, orchestrator.ErrInvalidMsisdn),
		errors.Is(err, orchestrator.ErrInvalidAmount),
		errors.Is(err, generator.ErrBadPhone):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, orchestrator.ErrUnknownTariff):
		status, code = http.StatusUnprocessableEntity, "unknown_tariff"
	case errors.Is(err, remote.ErrRemoteTimeout), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, remote.ErrCircuitOpen), errors.Is(err, remote.ErrRemoteUnavailable):
		status, code = http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.Is(err, orchestrator.ErrClosed):
		status, code = http.StatusServiceUnavailable, "shutting_down"
	}

	writeErr(c, status, code, err.Error())
}
