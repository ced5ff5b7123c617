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
	"math/rand/v2"

	"telecom_billing_sim/internal/billing/model"
)

const (
	maxCallSeconds = 1800
	minGapSeconds  = 57600
	maxGapSeconds  = 115200
)

var ErrNotEnoughSubscribers = errors.New("generator needs at least two subscribers")

// generatePartition produces calls for [start, end). Local-to-local calls
// also get the callee's mirrored record.
func generatePartition(subs []model.Subscriber, start, end int64, rnd *rand.Rand) ([]model.CallRecord, error) {
	if start >= end {
		return nil, nil
	}
	if len(subs) < 2 {
		return nil, ErrNotEnoughSubscribers
	}

	var out []model.CallRecord
	for t := start; t < end; {
		ci := rnd.IntN(len(subs))
		// сдвиг на 1..n-1 гарантирует callee != caller
		ce := (ci + 1 + rnd.IntN(len(subs)-1)) % len(subs)
		caller, callee := subs[ci], subs[ce]

		dir := model.DirIncoming
		if rnd.IntN(2) == 1 {
			dir = model.DirOutgoing
		}

		// [1, 1800): звонок нулевой длины не отличить от пустой записи
		dur := 1 + rnd.Int64N(maxCallSeconds-1)

		rec := model.CallRecord{
			Direction: dir,
			Caller:    caller.PhoneNumber,
			Callee:    callee.PhoneNumber,
			Start:     t,
			End:       t + dur,
		}
		out = append(out, rec)
		if caller.Local && callee.Local {
			out = append(out, rec.Mirror())
		}

		t = min(t+minGapSeconds+rnd.Int64N(maxGapSeconds-minGapSeconds), end)
	}
	return out, nil
}

// runPartition is one generator task: produce, put the whole list on the
// queue in one blocking send, then leave the barrier.
func (c *Coordinator) runPartition(ctx context.Context, subs []model.Subscriber, part Interval, rnd *rand.Rand) {
	defer c.phaser.ArriveAndDeregister()

	recs, err := generatePartition(subs, part.Start, part.End, rnd)
	if err != nil {
		c.logger.WithError(err).WithField("start", part.Start).Error("partition generation failed")
		return
	}

	c.produced.Add(int64(len(recs)))
	c.metrics.RecordsGenerated(len(recs))

	select {
	case c.queue <- recs:
	case <-ctx.Done():
		c.logger.WithField("start", part.Start).Warn("partition dropped: context done")
	}
}
