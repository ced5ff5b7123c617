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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/wire"
)

func testBatch() Batch {
	recs := []model.CallRecord{
		{Direction: model.DirOutgoing, Caller: "79990000001", Callee: "79990000002", Start: 1672531200, End: 1672531260},
		{Direction: model.DirIncoming, Caller: "79990000002", Callee: "79990000001", Start: 1672617600, End: 1672617700},
	}
	return Batch{ID: "b-1", Seq: 3, Records: recs, Text: wire.EncodeBatch(recs)}
}

func TestFileSinkShip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewFileSink(dir)
	require.NoError(t, s.Reset())

	b := testBatch()
	require.NoError(t, s.Ship(context.Background(), b))

	data, err := os.ReadFile(filepath.Join(dir, "cdr_00003_01-01-2023_01-02-2023.txt"))
	require.NoError(t, err)
	assert.Equal(t, b.Text, string(data))

	require.NoError(t, s.Reset())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	topic    string
	key      []byte
	value    []byte
}

func (p *flakyPublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func TestBusSinkRetries(t *testing.T) {
	pub := &flakyPublisher{failures: 1}
	s := NewBusSink(pub, "cdr-topic", RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})

	b := testBatch()
	require.NoError(t, s.Ship(context.Background(), b))

	assert.Equal(t, 2, pub.calls)
	assert.Equal(t, "cdr-topic", pub.topic)
	assert.Equal(t, []byte("b-1"), pub.key)

	text, err := wire.DecodeBase64(pub.value)
	require.NoError(t, err)
	assert.Equal(t, b.Text, text)
}

func TestBusSinkGivesUp(t *testing.T) {
	pub := &flakyPublisher{failures: 10}
	s := NewBusSink(pub, "cdr-topic", RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	assert.Error(t, s.Ship(context.Background(), testBatch()))
	assert.Equal(t, 3, pub.calls)
}

type failingSink struct{}

func (failingSink) Name() string                      { return "failing" }
func (failingSink) Ship(context.Context, Batch) error { return errors.New("disk full") }

func TestMultiSinkJoinsErrors(t *testing.T) {
	rec := &recordingSink{}
	m := MultiSink{rec, failingSink{}}

	err := m.Ship(context.Background(), testBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: disk full")
	assert.Len(t, rec.snapshot(), 1)

	require.NoError(t, m.Reset())
	assert.Equal(t, 1, rec.resets)
}

type textSubmitter struct {
	got []string
}

func (s *textSubmitter) SubmitBatch(_ context.Context, text string) error {
	s.got = append(s.got, text)
	return nil
}

func TestHTTPSinkSubmitsPlainText(t *testing.T) {
	sub := &textSubmitter{}
	b := testBatch()

	require.NoError(t, NewHTTPSink(sub).Ship(context.Background(), b))
	assert.Equal(t, []string{b.Text}, sub.got)
}
