// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package generator simulates a year of call traffic month by month and
// ships it in small sorted batches.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/billing/textutil"
	"telecom_billing_sim/internal/billing/wire"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
)

var (
	ErrAlreadyRunning = errors.New("generation is already running")
	ErrBadConfig      = errors.New("bad generator config")
	ErrBadPhone       = errors.New("phone number must be digits only")
)

type Config struct {
	Origin        time.Time
	Months        int
	Partitions    int
	QueueCapacity int
	BatchSize     int
	// 0 seeds from the clock.
	Seed uint64
}

type MonthReport struct {
	Start         time.Time
	Produced      int
	Flushed       int
	Batches       int
	FailedBatches int
}

type Report struct {
	Months []MonthReport
}

func (r Report) Produced() int {
	n := 0
	for _, m := range r.Months {
		n += m.Produced
	}
	return n
}

func (r Report) Flushed() int {
	n := 0
	for _, m := range r.Months {
		n += m.Flushed
	}
	return n
}

// Coordinator owns the generation queue and the barrier. The barrier always
// holds at least one permanent party, the coordinator itself.
type Coordinator struct {
	cfg     Config
	subs    repo.SubscriberRepository
	cdrs    repo.CDRRepository
	sink    BatchSink
	logger  logging.Logger
	metrics *metrics.Metrics

	phaser   *Phaser
	queue    chan []model.CallRecord
	produced atomic.Int64
	running  atomic.Bool

	ctlMu     sync.Mutex
	permanent int
	// external parties inside Advance
	waiting int
}

func NewCoordinator(
	cfg Config,
	subs repo.SubscriberRepository,
	cdrs repo.CDRRepository,
	sink BatchSink,
	logger logging.Logger,
	m *metrics.Metrics,
) (*Coordinator, error) {
	if cfg.Months < 1 || cfg.Partitions < 1 || cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%w: months, partitions and batch size must be positive", ErrBadConfig)
	}
	if cfg.QueueCapacity < cfg.Partitions {
		return nil, fmt.Errorf("%w: queue capacity %d is below %d partitions", ErrBadConfig, cfg.QueueCapacity, cfg.Partitions)
	}

	return &Coordinator{
		cfg:       cfg,
		subs:      subs,
		cdrs:      cdrs,
		sink:      sink,
		logger:    logger,
		metrics:   m,
		phaser:    NewPhaser(1),
		queue:     make(chan []model.CallRecord, cfg.QueueCapacity),
		permanent: 1,
	}, nil
}

// Run simulates all months and returns once the last one is flushed.
func (c *Coordinator) Run(ctx context.Context) (Report, error) {
	if !c.running.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRunning
	}
	defer c.running.Store(false)

	return c.run(ctx)
}

// Start runs the simulation in the background.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	go func() {
		defer c.running.Store(false)

		rep, err := c.run(ctx)
		entry := c.logger.WithFields(logrus.Fields{
			"months":   len(rep.Months),
			"produced": rep.Produced(),
			"flushed":  rep.Flushed(),
		})
		if err != nil {
			entry.WithError(err).Error("generation stopped")
			return
		}
		entry.Info("generation finished")
	}()
	return nil
}

func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Register adds a permanent party that has to Advance every phase.
func (c *Coordinator) Register() int {
	c.ctlMu.Lock()
	defer c.ctlMu.Unlock()

	c.permanent++
	c.phaser.Register()
	return c.permanent
}

// Deregister removes a permanent party, never the last one. Only an idle
// party may leave: while every external party is blocked in Advance the call
// is a no-op, otherwise an arrival of a removed party would count toward the
// phase.
func (c *Coordinator) Deregister() int {
	c.ctlMu.Lock()
	defer c.ctlMu.Unlock()

	if c.permanent-1 <= c.waiting {
		if c.permanent > 1 {
			c.logger.WithField("waiting", c.waiting).Warn("deregister ignored: every external party is waiting")
		}
		return c.permanent
	}
	c.permanent--
	c.phaser.Deregister()
	return c.permanent
}

// Advance arrives at the barrier and waits for the phase to complete.
func (c *Coordinator) Advance(ctx context.Context) (int, error) {
	c.ctlMu.Lock()
	c.waiting++
	c.ctlMu.Unlock()

	defer func() {
		c.ctlMu.Lock()
		c.waiting--
		c.ctlMu.Unlock()
	}()
	return c.phaser.ArriveAndAwaitAdvance(ctx)
}

// AddSubscriber puts a new local subscriber into the pool; it takes part
// starting with the next simulated month.
func (c *Coordinator) AddSubscriber(ctx context.Context, phone string) (model.Subscriber, error) {
	if !textutil.IsDigits(phone) {
		return model.Subscriber{}, fmt.Errorf("%w: %q", ErrBadPhone, phone)
	}
	return c.subs.Add(ctx, model.Subscriber{PhoneNumber: phone, Local: true})
}

func (c *Coordinator) run(ctx context.Context) (Report, error) {
	if r, ok := c.sink.(Resetter); ok {
		if err := r.Reset(); err != nil {
			return Report{}, fmt.Errorf("reset sink: %w", err)
		}
	}
	// остатки от прерванного прогона
	c.drain()

	seed := c.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var (
		rep Report
		seq int
	)
	for m := range c.cfg.Months {
		from := c.cfg.Origin.AddDate(0, m, 0)
		to := c.cfg.Origin.AddDate(0, m+1, 0)

		subs, err := c.subs.All(ctx)
		if err != nil {
			return rep, fmt.Errorf("load subscribers: %w", err)
		}
		if len(subs) < 2 {
			return rep, ErrNotEnoughSubscribers
		}

		c.produced.Store(0)
		for i, part := range splitInterval(from.Unix(), to.Unix(), c.cfg.Partitions) {
			c.phaser.Register()
			rnd := rand.New(rand.NewPCG(seed, uint64(m)<<32|uint64(i)))
			go c.runPartition(ctx, subs, part, rnd)
		}

		if _, err := c.phaser.ArriveAndAwaitAdvance(ctx); err != nil {
			return rep, fmt.Errorf("month %s: wait for generators: %w", from.Format("2006-01"), err)
		}

		mr := MonthReport{Start: from, Produced: int(c.produced.Load())}
		c.flush(ctx, c.drain(), &mr, &seq)
		rep.Months = append(rep.Months, mr)

		c.logger.WithFields(logrus.Fields{
			"month":          from.Format("2006-01"),
			"produced":       mr.Produced,
			"flushed":        mr.Flushed,
			"batches":        mr.Batches,
			"failed_batches": mr.FailedBatches,
		}).Info("month flushed")

		if _, err := c.phaser.ArriveAndAwaitAdvance(ctx); err != nil {
			return rep, fmt.Errorf("month %s: wait for advance: %w", from.Format("2006-01"), err)
		}
	}
	return rep, nil
}

// drain empties the queue without blocking.
func (c *Coordinator) drain() []model.CallRecord {
	var all []model.CallRecord
	for {
		select {
		case recs := <-c.queue:
			all = append(all, recs...)
		default:
			return all
		}
	}
}

func (c *Coordinator) flush(ctx context.Context, recs []model.CallRecord, mr *MonthReport, seq *int) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].End < recs[j].End })

	for len(recs) > 0 {
		n := min(c.cfg.BatchSize, len(recs))
		part := recs[:n]
		recs = recs[n:]

		*seq++
		b := Batch{
			ID:      uuid.NewString(),
			Seq:     *seq,
			Records: part,
			Text:    wire.EncodeBatch(part),
		}

		if err := c.cdrs.SaveAll(ctx, part); err != nil {
			c.logger.WithError(err).WithField("batch_id", b.ID).Error("failed to persist batch")
		}

		err := c.sink.Ship(ctx, b)
		c.metrics.BatchShipped(c.sink.Name(), err)
		if err != nil {
			mr.FailedBatches++
			c.logger.WithError(err).WithFields(logrus.Fields{
				"batch_id": b.ID,
				"seq":      b.Seq,
			}).Error("failed to ship batch")
		}

		mr.Flushed += n
		mr.Batches++
	}
}
