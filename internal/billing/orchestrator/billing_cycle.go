// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
)

// Пополнение при смене месяца, в рублях: [min, max).
const (
	bucketTopUpMin = 30
	bucketTopUpMax = 100
	plainTopUpMin  = 15
	plainTopUpMax  = 30

	maxReassignments = 2
)

// advanceCycle runs the cycle action for rec's months if it crosses a
// boundary. The state moves only after the action succeeded.
func (o *Orchestrator) advanceCycle(ctx context.Context, rec model.CallRecord) error {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	b, ok := o.cycle.Next(rec.StartMonth(), rec.EndMonth())
	if !ok {
		return nil
	}

	if b.Opening {
		o.cycle.Commit(b)
		o.logger.WithField("month", b.Hi).Info("billing started")
		return nil
	}

	if err := o.runCycle(ctx, b); err != nil {
		return fmt.Errorf("cycle %d..%d: %w", b.Lo, b.Hi, err)
	}

	o.cycle.Commit(b)
	o.metrics.CycleBoundary()
	return nil
}

// Cycle returns the last processed month.
func (o *Orchestrator) Cycle() int {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()
	return o.cycle.Last()
}

func (o *Orchestrator) runCycle(ctx context.Context, b Boundary) error {
	// всё удалённое до первой мутации
	bills, err := o.rater.MonthlyBills(ctx, b.Lo, b.Hi)
	if err != nil {
		return fmt.Errorf("monthly bills: %w", err)
	}

	clients, err := o.clients.List(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	tariffs := make(map[int64]model.Tariff, len(clients))
	for _, c := range clients {
		if _, ok := tariffs[c.TariffID]; ok {
			continue
		}
		t, err := o.tariff(ctx, c.TariffID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return fmt.Errorf("tariff %d: %w", c.TariffID, err)
		}
		tariffs[c.TariffID] = t
	}

	for m := b.Lo; m <= b.Hi; m++ {
		for _, c := range clients {
			amount := o.topUpAmount(tariffs[c.TariffID])
			if err := o.withClient(c.Msisdn, func() error {
				_, err := o.clients.AddBalance(ctx, c.Msisdn, amount)
				return err
			}); err != nil {
				o.logger.WithError(err).WithField("msisdn", c.Msisdn).Error("top-up failed")
			}
		}
	}

	for _, c := range clients {
		t, ok := tariffs[c.TariffID]
		if !ok || t.Class != model.TariffMonthlyBucket {
			continue
		}
		if err := o.withClient(c.Msisdn, func() error {
			return o.clients.SetRemaining(ctx, c.Msisdn, t.MonthlyLimitMinutes)
		}); err != nil {
			o.logger.WithError(err).WithField("msisdn", c.Msisdn).Error("minutes reset failed")
		}
	}

	for _, bill := range bills {
		if bill.Amount <= 0 {
			continue
		}
		if err := o.withClient(bill.SubscriberID, func() error {
			_, err := o.clients.AddBalance(ctx, bill.SubscriberID, -bill.Amount)
			return err
		}); err != nil {
			o.logger.WithError(err).WithField("msisdn", bill.SubscriberID).Warn("monthly charge not applied")
		}
	}

	changed := o.reassignTariffs(ctx, clients)

	if err := o.PublishSnapshot(ctx); err != nil {
		o.logger.WithError(err).Error("failed to publish client snapshot")
	}

	o.logger.WithFields(logrus.Fields{
		"from":       b.Lo,
		"to":         b.Hi,
		"clients":    len(clients),
		"bills":      len(bills),
		"reassigned": changed,
	}).Info("billing cycle done")
	return nil
}

func (o *Orchestrator) withClient(msisdn string, fn func() error) error {
	unlock := o.locks.Lock(msisdn)
	defer unlock()
	return fn()
}

// topUpAmount is a whole number of roubles, wider for bucket tariffs.
func (o *Orchestrator) topUpAmount(t model.Tariff) model.Money {
	lo, hi := plainTopUpMin, plainTopUpMax
	if t.Class == model.TariffMonthlyBucket {
		lo, hi = bucketTopUpMin, bucketTopUpMax
	}
	return model.Money(lo+o.intN(hi-lo)) * 100
}

// reassignTariffs moves up to two distinct random clients to another known
// tariff. The slice is reordered and the moved entries are updated in place.
func (o *Orchestrator) reassignTariffs(ctx context.Context, clients []model.Client) int {
	known := o.knownTariffs()
	if len(known) < 2 || len(clients) == 0 {
		return 0
	}

	n := min(o.intN(maxReassignments+1), len(clients))
	changed := 0
	for i := range n {
		// частичная перетасовка: первые i уже выбраны
		j := i + o.intN(len(clients)-i)
		clients[i], clients[j] = clients[j], clients[i]
		c := &clients[i]

		next := known[o.intN(len(known))]
		if next.ID == c.TariffID {
			next = known[(o.indexOf(known, next.ID)+1)%len(known)]
		}

		err := o.withClient(c.Msisdn, func() error {
			return o.clients.SetTariff(ctx, c.Msisdn, next.ID, next.StartingMinutes())
		})
		if err != nil {
			o.logger.WithError(err).WithField("msisdn", c.Msisdn).Error("tariff change failed")
			continue
		}

		o.logger.WithFields(logrus.Fields{
			"msisdn": c.Msisdn,
			"from":   c.TariffID,
			"to":     next.ID,
		}).Info("tariff changed")
		c.TariffID = next.ID
		c.RemainingMinutes = next.StartingMinutes()
		changed++
	}
	return changed
}

func (o *Orchestrator) indexOf(ts []model.Tariff, id int64) int {
	for i, t := range ts {
		if t.ID == id {
			return i
		}
	}
	return 0
}
