// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/wire"
)

const fileDateLayout = "01-02-2006"

// Batch is one flushed group of records, sorted by end time.
type Batch struct {
	ID      string
	Seq     int
	Records []model.CallRecord
	Text    string
}

func (b Batch) From() time.Time {
	if len(b.Records) == 0 {
		return time.Time{}
	}
	return time.Unix(b.Records[0].Start, 0).UTC()
}

func (b Batch) To() time.Time {
	if len(b.Records) == 0 {
		return time.Time{}
	}
	return time.Unix(b.Records[len(b.Records)-1].End, 0).UTC()
}

// BatchSink ships a rendered batch somewhere.
type BatchSink interface {
	Name() string
	Ship(ctx context.Context, b Batch) error
}

// Resetter is implemented by sinks that keep state between runs.
type Resetter interface {
	Reset() error
}

// FileSink writes every batch to its own file in Dir.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Name() string { return "file" }

// Reset recreates the output directory.
func (s *FileSink) Reset() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("clean %s: %w", s.Dir, err)
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s *FileSink) Ship(_ context.Context, b Batch) error {
	name := fmt.Sprintf("cdr_%05d_%s_%s.txt", b.Seq, b.From().Format(fileDateLayout), b.To().Format(fileDateLayout))
	if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(b.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Publisher is the bus side of BusSink.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// BusSink publishes base64-encoded batches with retries.
type BusSink struct {
	pub      Publisher
	topic    string
	executor failsafe.Executor[any]
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewBusSink(pub Publisher, topic string, rc RetryConfig) *BusSink {
	if rc.MaxRetries < 0 {
		rc.MaxRetries = 0
	}
	if rc.BaseDelay <= 0 {
		rc.BaseDelay = 100 * time.Millisecond
	}
	if rc.MaxDelay <= rc.BaseDelay {
		rc.MaxDelay = 2 * rc.BaseDelay
	}

	retry := retrypolicy.NewBuilder[any]().
		WithBackoff(rc.BaseDelay, rc.MaxDelay).
		WithMaxRetries(rc.MaxRetries).
		WithJitterFactor(0.1).
		Build()

	return &BusSink{
		pub:      pub,
		topic:    topic,
		executor: failsafe.With[any](retry),
	}
}

func (s *BusSink) Name() string { return "bus" }

func (s *BusSink) Ship(ctx context.Context, b Batch) error {
	payload := wire.EncodeBase64(b.Text)
	return s.executor.WithContext(ctx).Run(func() error {
		return s.pub.Publish(ctx, s.topic, []byte(b.ID), payload)
	})
}

// BatchSubmitter posts a plain-text batch to billing.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, text string) error
}

// HTTPSink is used when the bus is off.
type HTTPSink struct {
	sub BatchSubmitter
}

func NewHTTPSink(sub BatchSubmitter) *HTTPSink {
	return &HTTPSink{sub: sub}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Ship(ctx context.Context, b Batch) error {
	return s.sub.SubmitBatch(ctx, b.Text)
}

// MultiSink ships to every sink and joins their errors.
type MultiSink []BatchSink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Ship(ctx context.Context, b Batch) error {
	var errs []error
	for _, s := range m {
		if err := s.Ship(ctx, b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Reset() error {
	for _, s := range m {
		if r, ok := s.(Resetter); ok {
			if err := r.Reset(); err != nil {
				return err
			}
		}
	}
	return nil
}
