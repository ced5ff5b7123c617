// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package server runs an http.Handler until its context is cancelled.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"telecom_billing_sim/internal/config"
	"telecom_billing_sim/internal/logging"
)

func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		// ReadTimeout не ставим: загрузка больших CSV/батчей не должна обрываться.
		IdleTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

// Run serves h on addr and shuts down gracefully once ctx is done.
func Run(ctx context.Context, addr string, h http.Handler, logger logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, h, logger)
}

func Serve(ctx context.Context, ln net.Listener, h http.Handler, logger logging.Logger) error {
	srv := New(ln.Addr().String(), h)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown: start")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("shutdown: done")
	return nil
}
