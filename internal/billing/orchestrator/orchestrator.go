// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package orchestrator consumes call batches, keeps client balances and
// drives the monthly billing cycle.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/cache"
	"telecom_billing_sim/internal/billing/keylock"
	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/billing/wire"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/metrics"
)

var ErrClosed = errors.New("billing orchestrator is closed")

type Config struct {
	Workers int
	// 0 seeds from the clock.
	Seed uint64
}

// BatchResult counts what happened to every line of a batch.
type BatchResult struct {
	Lines     int `json:"lines"`
	Malformed int `json:"malformed"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type job struct {
	ctx  context.Context
	text string
	res  chan BatchResult
}

type Orchestrator struct {
	clients   repo.ClientRepository
	rater     Rater
	tariffs   *cache.StateCache[int64, model.Tariff]
	snapshots SnapshotPublisher
	notifier  SubscriberNotifier
	locks     *keylock.Striped
	logger    logging.Logger
	metrics   *metrics.Metrics

	cycleMu sync.Mutex
	cycle   CycleState

	rndMu sync.Mutex
	rnd   *rand.Rand

	jobs chan job

	closeOnce sync.Once
	closed    atomic.Bool

	stopCtx    context.Context
	stopCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New starts the batch workers; snapshots and notifier may be nil.
func New(
	cfg Config,
	clients repo.ClientRepository,
	rater Rater,
	tariffs *cache.StateCache[int64, model.Tariff],
	snapshots SnapshotPublisher,
	notifier SubscriberNotifier,
	logger logging.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	o := &Orchestrator{
		clients:   clients,
		rater:     rater,
		tariffs:   tariffs,
		snapshots: snapshots,
		notifier:  notifier,
		locks:     keylock.New(0),
		logger:    logger,
		metrics:   m,
		rnd:       rand.New(rand.NewPCG(seed, seed>>1|1)),
		jobs:      make(chan job),
	}

	o.stopCtx, o.stopCancel = context.WithCancel(context.Background())
	o.startWorkers(cfg.Workers)

	return o
}

func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.closed.Store(true)
		o.stopCancel()
		o.wg.Wait()
	})
}

func (o *Orchestrator) startWorkers(n int) {
	o.wg.Add(n)

	for range n {
		go o.batchWorker()
	}
}

func (o *Orchestrator) batchWorker() {
	defer o.wg.Done()

	for {
		select {
		case <-o.stopCtx.Done():
			return
		case j := <-o.jobs:
			if j.ctx.Err() != nil {
				j.res <- BatchResult{}
				continue
			}
			j.res <- o.ProcessBatch(j.ctx, j.text)
		}
	}
}

// Submit hands a batch to a worker and waits for its result.
func (o *Orchestrator) Submit(ctx context.Context, text string) (BatchResult, error) {
	if o.closed.Load() {
		return BatchResult{}, ErrClosed
	}

	j := job{ctx: ctx, text: text, res: make(chan BatchResult, 1)}
	select {
	case o.jobs <- j:
	case <-ctx.Done():
		return BatchResult{}, ctx.Err()
	case <-o.stopCtx.Done():
		return BatchResult{}, ErrClosed
	}

	select {
	case r := <-j.res:
		return r, nil
	case <-ctx.Done():
		return BatchResult{}, ctx.Err()
	}
}

// HandleMessage is the bus handler for base64 batches. A payload that is
// not base64 is dropped so it cannot block the partition.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg bus.Message) error {
	text, err := wire.DecodeBase64(msg.Value)
	if err != nil {
		o.metrics.CallProcessed(metrics.ResultMalformed)
		o.logger.WithError(err).WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Error("dropping undecodable batch")
		return nil
	}

	res, err := o.Submit(ctx, text)
	if err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{
		"batch_key": string(msg.Key),
		"lines":     res.Lines,
		"processed": res.Processed,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
		"malformed": res.Malformed,
	}).Info("batch processed")
	return nil
}

// ProcessBatch rates calls in file order. Every line is handled on its own:
// a bad line or a failed call never stops the batch.
func (o *Orchestrator) ProcessBatch(ctx context.Context, text string) BatchResult {
	recs, bad := wire.DecodeBatch(text)

	res := BatchResult{Lines: len(recs) + len(bad), Malformed: len(bad)}
	for _, le := range bad {
		o.metrics.CallProcessed(metrics.ResultMalformed)
		o.logger.WithError(le.Err).WithFields(logrus.Fields{
			"line": le.Line,
			"raw":  le.Raw,
		}).Warn("skipping malformed record")
	}

	for _, rec := range recs {
		result := o.processCall(ctx, rec)
		o.metrics.CallProcessed(result)

		switch result {
		case metrics.ResultOK:
			res.Processed++
		case metrics.ResultSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
	}
	return res
}

func (o *Orchestrator) processCall(ctx context.Context, rec model.CallRecord) string {
	entry := o.logger.WithFields(logrus.Fields{
		"caller": rec.Caller,
		"callee": rec.Callee,
		"start":  rec.Start,
		"end":    rec.End,
	})

	client, ok, err := o.clients.Get(ctx, rec.Caller)
	if err != nil {
		entry.WithError(err).Error("client lookup failed")
		return metrics.ResultFailed
	}
	if !ok {
		// чужой абонент, не тарифицируем
		return metrics.ResultSkipped
	}
	if rec.Start >= rec.End {
		entry.Warn("skipping call with start >= end")
		return metrics.ResultSkipped
	}

	if _, err := o.tariff(ctx, client.TariffID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			entry.WithField("tariff_id", client.TariffID).Warn("client has unknown tariff")
			return metrics.ResultSkipped
		}
		entry.WithError(err).Error("tariff lookup failed")
		return resultOfRemote(err)
	}

	if err := o.advanceCycle(ctx, rec); err != nil {
		entry.WithError(err).Error("billing cycle aborted")
		return resultOfRemote(err)
	}

	unlock := o.locks.Lock(rec.Caller)
	defer unlock()

	// тариф и минуты могли смениться в цикле, hrs узнает о них из запроса
	client, ok, err = o.clients.Get(ctx, rec.Caller)
	if err != nil || !ok {
		entry.WithError(err).Error("client vanished during processing")
		return metrics.ResultFailed
	}
	remaining := client.RemainingMinutes

	charge, err := o.rater.Calculate(ctx, model.RatingRequest{
		Direction:        rec.Direction,
		Caller:           rec.Caller,
		Callee:           rec.Callee,
		Start:            rec.Start,
		End:              rec.End,
		TariffID:         client.TariffID,
		RemainingMinutes: &remaining,
	})
	if err != nil {
		entry.WithError(err).Error("rating failed")
		return resultOfRemote(err)
	}

	updated, err := o.clients.ApplyCharge(ctx, rec.Caller, charge.Amount, charge.UsedMinutes)
	if err != nil {
		entry.WithError(err).Error("failed to apply charge")
		return metrics.ResultFailed
	}

	entry.WithFields(logrus.Fields{
		"amount":    charge.Amount.String(),
		"balance":   updated.Balance.String(),
		"remaining": updated.RemainingMinutes,
	}).Debug("call charged")
	return metrics.ResultOK
}

func (o *Orchestrator) tariff(ctx context.Context, id int64) (model.Tariff, error) {
	return o.tariffs.Fetch(ctx, id, o.rater.Tariff)
}

// ApplyTariffSnapshot replaces the tariff cache with a pushed snapshot.
func (o *Orchestrator) ApplyTariffSnapshot(tariffs []model.Tariff) {
	snap := make(map[int64]model.Tariff, len(tariffs))
	for _, t := range tariffs {
		snap[t.ID] = t
	}
	o.tariffs.Load(snap)

	o.logger.WithField("tariffs", len(snap)).Info("tariff cache reloaded")
}

// knownTariffs returns cached tariffs ordered by id.
func (o *Orchestrator) knownTariffs() []model.Tariff {
	ts := o.tariffs.Values()
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	return ts
}

// PublishSnapshot pushes every client state to the rating side.
func (o *Orchestrator) PublishSnapshot(ctx context.Context) error {
	if o.snapshots == nil {
		return nil
	}

	clients, err := o.clients.List(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	states := make([]model.ClientState, 0, len(clients))
	for _, c := range clients {
		states = append(states, c.State())
	}
	return o.snapshots.PublishClients(ctx, states)
}

func (o *Orchestrator) intN(n int) int {
	o.rndMu.Lock()
	defer o.rndMu.Unlock()
	return o.rnd.IntN(n)
}

func resultOfRemote(err error) string {
	if errors.Is(err, remote.ErrRemoteTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.ResultTimeout
	}
	return metrics.ResultFailed
}
