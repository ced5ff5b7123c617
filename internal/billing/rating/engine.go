// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package rating turns calls into charges and owns the client state cache
// used for minute buckets.
package rating

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/cache"
	"telecom_billing_sim/internal/billing/keylock"
	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/logging"
)

// ClientLookup resolves a client that is missing from the cache.
// Unknown clients are reported with repo.ErrNotFound.
type ClientLookup interface {
	ClientState(ctx context.Context, msisdn string) (model.ClientState, error)
}

type Engine struct {
	clients *cache.StateCache[string, model.ClientState]
	tariffs repo.TariffRepository
	lookup  ClientLookup
	locks   *keylock.Striped
	logger  logging.Logger
}

// NewEngine; lookup may be nil, then cache misses count as unknown clients.
func NewEngine(
	clients *cache.StateCache[string, model.ClientState],
	tariffs repo.TariffRepository,
	lookup ClientLookup,
	locks *keylock.Striped,
	logger logging.Logger,
) *Engine {
	if locks == nil {
		locks = keylock.New(0)
	}
	return &Engine{
		clients: clients,
		tariffs: tariffs,
		lookup:  lookup,
		locks:   locks,
		logger:  logger,
	}
}

// Calculate rates one call. Calls of the same caller are serialized and the
// bucket decrement is in the cache before the charge is returned.
func (e *Engine) Calculate(ctx context.Context, req model.RatingRequest) (model.Charge, error) {
	if req.Caller == "" {
		return model.Charge{}, errors.New("rating: empty caller")
	}

	unlock := e.locks.Lock(req.Caller)
	defer unlock()

	state, known, err := e.requestState(ctx, req)
	if err != nil {
		return model.Charge{}, err
	}

	tariff, ok, err := e.tariffs.Get(ctx, state.TariffID)
	if err != nil {
		return model.Charge{}, fmt.Errorf("rating: tariff %d: %w", state.TariffID, err)
	}
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"caller":    req.Caller,
			"tariff_id": state.TariffID,
		}).Warn("unknown tariff, call is not charged")
		return model.Charge{SubscriberID: req.Caller, RemainingMinutes: state.RemainingMinutes}, nil
	}

	// известный абонент = есть в кэше
	_, calleeKnown := e.clients.Get(req.Callee)

	charge := Rate(req.Call(), tariff, &state, calleeKnown)
	if known {
		e.clients.Put(req.Caller, state)
	}
	return charge, nil
}

// requestState prefers the state brt sent with the request over the cache,
// so a cycle reset on the brt side is seen before any snapshot arrives.
func (e *Engine) requestState(ctx context.Context, req model.RatingRequest) (model.ClientState, bool, error) {
	if req.RemainingMinutes != nil && req.TariffID != 0 {
		return model.ClientState{
			SubscriberID:     req.Caller,
			TariffID:         req.TariffID,
			RemainingMinutes: max(*req.RemainingMinutes, 0),
		}, true, nil
	}

	state, known, err := e.callerState(ctx, req.Caller)
	if err != nil {
		return model.ClientState{}, false, err
	}
	if req.TariffID != 0 {
		state.TariffID = req.TariffID
	}
	return state, known, nil
}

func (e *Engine) callerState(ctx context.Context, msisdn string) (model.ClientState, bool, error) {
	if e.lookup == nil {
		if st, ok := e.clients.Get(msisdn); ok {
			return st, true, nil
		}
		return model.ClientState{SubscriberID: msisdn}, false, nil
	}

	st, err := e.clients.Fetch(ctx, msisdn, e.lookup.ClientState)
	switch {
	case err == nil:
		return st, true, nil
	case errors.Is(err, repo.ErrNotFound):
		return model.ClientState{SubscriberID: msisdn}, false, nil
	default:
		return model.ClientState{}, false, fmt.Errorf("rating: lookup %s: %w", msisdn, err)
	}
}

// MonthlyBills charges the monthly fee to every cached bucket client when the
// range crosses at least one month boundary.
func (e *Engine) MonthlyBills(ctx context.Context, startMonth, endMonth int) ([]model.Charge, error) {
	if endMonth <= startMonth {
		return nil, nil
	}

	var bills []model.Charge
	for _, st := range e.clients.Values() {
		t, ok, err := e.tariffs.Get(ctx, st.TariffID)
		if err != nil {
			return nil, fmt.Errorf("rating: tariff %d: %w", st.TariffID, err)
		}
		if !ok || t.Class != model.TariffMonthlyBucket {
			continue
		}
		bills = append(bills, model.Charge{
			SubscriberID:     st.SubscriberID,
			Amount:           t.MonthlyFee,
			RemainingMinutes: st.RemainingMinutes,
		})
	}

	sort.Slice(bills, func(i, j int) bool { return bills[i].SubscriberID < bills[j].SubscriberID })
	return bills, nil
}

// ApplySnapshot replaces the client cache with a pushed snapshot.
func (e *Engine) ApplySnapshot(states []model.ClientState) {
	snap := make(map[string]model.ClientState, len(states))
	for _, st := range states {
		if st.SubscriberID == "" {
			continue
		}
		st.RemainingMinutes = max(st.RemainingMinutes, 0)
		snap[st.SubscriberID] = st
	}
	e.clients.Load(snap)

	e.logger.WithField("clients", len(snap)).Info("client cache reloaded")
}

// ClientState is a cache-only read.
func (e *Engine) ClientState(msisdn string) (model.ClientState, bool) {
	return e.clients.Get(msisdn)
}

func (e *Engine) Tariff(ctx context.Context, id int64) (model.Tariff, error) {
	t, ok, err := e.tariffs.Get(ctx, id)
	if err != nil {
		return model.Tariff{}, err
	}
	if !ok {
		return model.Tariff{}, fmt.Errorf("tariff %d: %w", id, repo.ErrNotFound)
	}
	return t, nil
}

func (e *Engine) TariffSnapshot(ctx context.Context) ([]model.Tariff, error) {
	return e.tariffs.All(ctx)
}
