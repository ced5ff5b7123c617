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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo/memory"
	"telecom_billing_sim/internal/logging"
)

var testOrigin = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu      sync.Mutex
	batches []Batch
	resets  int
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Ship(_ context.Context, b Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
	return nil
}

func (s *recordingSink) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

func (s *recordingSink) snapshot() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Batch(nil), s.batches...)
}

// blockingSink holds the first Ship until release is closed.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Ship(ctx context.Context, _ Batch) error {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func newTestCoordinator(t *testing.T, cfg Config, sink BatchSink, subs []model.Subscriber) (*Coordinator, *memory.CDRMemoryRepo) {
	t.Helper()

	subRepo := memory.NewSubscriberMemoryRepo()
	require.NoError(t, subRepo.ReplaceAll(context.Background(), subs))
	cdrs := memory.NewCDRMemoryRepo()

	c, err := NewCoordinator(cfg, subRepo, cdrs, sink, logging.Discard(), nil)
	require.NoError(t, err)
	return c, cdrs
}

func defaultTestConfig() Config {
	return Config{
		Origin:        testOrigin,
		Months:        2,
		Partitions:    4,
		QueueCapacity: 4,
		BatchSize:     10,
		Seed:          42,
	}
}

func TestCoordinatorRunFlushesEverything(t *testing.T) {
	sink := &recordingSink{}
	c, cdrs := newTestCoordinator(t, defaultTestConfig(), sink, testSubs())

	rep, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Months, 2)
	assert.Equal(t, 1, sink.resets)

	for i, m := range rep.Months {
		assert.Equal(t, testOrigin.AddDate(0, i, 0), m.Start)
		assert.Positive(t, m.Produced)
		assert.Equal(t, m.Produced, m.Flushed)
		assert.Zero(t, m.FailedBatches)
	}
	assert.Equal(t, rep.Produced(), rep.Flushed())

	stored, err := cdrs.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rep.Produced(), stored)

	total := 0
	seen := map[string]bool{}
	for i, b := range sink.snapshot() {
		assert.Equal(t, i+1, b.Seq)
		assert.NotEmpty(t, b.ID)
		assert.False(t, seen[b.ID])
		seen[b.ID] = true

		require.NotEmpty(t, b.Records)
		assert.LessOrEqual(t, len(b.Records), 10)
		for j := 1; j < len(b.Records); j++ {
			assert.LessOrEqual(t, b.Records[j-1].End, b.Records[j].End)
		}
		total += len(b.Records)
	}
	assert.Equal(t, rep.Produced(), total)
	assert.False(t, c.Running())
}

func TestCoordinatorMonthsDoNotOverlap(t *testing.T) {
	sink := &recordingSink{}
	c, _ := newTestCoordinator(t, defaultTestConfig(), sink, testSubs())

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	feb := testOrigin.AddDate(0, 1, 0).Unix()
	sawFeb := false
	for _, b := range sink.snapshot() {
		for _, r := range b.Records {
			if r.Start >= feb {
				sawFeb = true
				continue
			}
			// январские звонки не могут прийти после февральских
			assert.False(t, sawFeb, "january call after february batch")
		}
	}
	assert.True(t, sawFeb)
}

func TestCoordinatorNotEnoughSubscribers(t *testing.T) {
	c, _ := newTestCoordinator(t, defaultTestConfig(), &recordingSink{}, testSubs()[:1])

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotEnoughSubscribers)
	assert.False(t, c.Running())
}

func TestNewCoordinatorRejectsSmallQueue(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.QueueCapacity = cfg.Partitions - 1

	_, err := NewCoordinator(cfg, memory.NewSubscriberMemoryRepo(), memory.NewCDRMemoryRepo(), &recordingSink{}, logging.Discard(), nil)
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestCoordinatorAlreadyRunning(t *testing.T) {
	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	cfg := defaultTestConfig()
	cfg.Months = 1
	c, _ := newTestCoordinator(t, cfg, sink, testSubs())

	require.NoError(t, c.Start(context.Background()))

	select {
	case <-sink.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not reach the sink")
	}

	assert.True(t, c.Running())
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(sink.release)
	require.Eventually(t, func() bool { return !c.Running() }, 5*time.Second, 10*time.Millisecond)
}

func TestCoordinatorPermanentParties(t *testing.T) {
	c, _ := newTestCoordinator(t, defaultTestConfig(), &recordingSink{}, testSubs())

	assert.Equal(t, 1, c.Deregister())
	assert.Equal(t, 2, c.Register())
	assert.Equal(t, 3, c.Register())
	assert.Equal(t, 2, c.Deregister())
	assert.Equal(t, 1, c.Deregister())
	assert.Equal(t, 1, c.Deregister())
	assert.Equal(t, 1, c.phaser.Parties())
}

func TestCoordinatorKeepsWaitingParty(t *testing.T) {
	c, _ := newTestCoordinator(t, defaultTestConfig(), &recordingSink{}, testSubs())
	require.Equal(t, 2, c.Register())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Advance(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		c.ctlMu.Lock()
		defer c.ctlMu.Unlock()
		return c.waiting == 1
	}, time.Second, 5*time.Millisecond)

	// единственный внешний участник ждёт, снимать его нельзя
	assert.Equal(t, 2, c.Deregister())
	assert.Equal(t, 2, c.phaser.Parties())
	assert.Equal(t, 0, c.phaser.Phase())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, 1, c.Deregister())
	assert.Equal(t, 1, c.phaser.Parties())
	assert.Equal(t, 0, c.phaser.Phase())
}

func TestCoordinatorExternalPartyGatesMonths(t *testing.T) {
	sink := &recordingSink{}
	cfg := defaultTestConfig()
	cfg.Months = 1
	c, _ := newTestCoordinator(t, cfg, sink, testSubs())
	c.Register()

	require.NoError(t, c.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sink.snapshot(), "month flushed without the external party")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Advance(ctx)
	require.NoError(t, err)
	_, err = c.Advance(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !c.Running() }, 5*time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, sink.snapshot())
}

func TestCoordinatorCancelled(t *testing.T) {
	cfg := defaultTestConfig()
	c, _ := newTestCoordinator(t, cfg, &recordingSink{}, testSubs())
	c.Register()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.Running())
}

func TestCoordinatorAddSubscriber(t *testing.T) {
	c, _ := newTestCoordinator(t, defaultTestConfig(), &recordingSink{}, testSubs())

	sub, err := c.AddSubscriber(context.Background(), "79990000005")
	require.NoError(t, err)
	assert.Equal(t, int64(5), sub.ID)
	assert.True(t, sub.Local)

	_, err = c.AddSubscriber(context.Background(), "7999abc")
	assert.ErrorIs(t, err, ErrBadPhone)
}
