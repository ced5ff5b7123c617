// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package remote

import (
	"context"
	"errors"
	"fmt"
	"net"

	"telecom_billing_sim/internal/billing/repo"
)

var (
	ErrCircuitOpen       = errors.New("circuit breaker is open")
	ErrRemoteTimeout     = errors.New("remote call timed out")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	ErrInvalidResponse   = errors.New("invalid response")

	// ErrNotFound is the repository sentinel so callers need not know the
	// entity came over the network.
	ErrNotFound = repo.ErrNotFound
)

// APIError is a non-2xx answer.
type APIError struct {
	Target     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %d %s", e.Target, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRemoteUnavailable:
		return e.StatusCode >= 500
	}
	return false
}

func (e *APIError) IsNotFound() bool { return e.StatusCode == 404 }

func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 }

// ConnectionError is a transport failure: no HTTP answer at all.
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection error: %v", e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

func (e *ConnectionError) Is(target error) bool {
	switch target {
	case ErrRemoteTimeout:
		return isTimeout(e.Cause)
	case ErrRemoteUnavailable:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
