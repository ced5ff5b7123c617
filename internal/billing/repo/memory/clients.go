// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
)

type ClientMemoryRepo struct {
	mu      sync.RWMutex
	clients map[string]*model.Client
}

func NewClientMemoryRepo() *ClientMemoryRepo {
	return &ClientMemoryRepo{clients: make(map[string]*model.Client)}
}

func (r *ClientMemoryRepo) Get(ctx context.Context, msisdn string) (model.Client, bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[msisdn]
	if !ok {
		return model.Client{}, false, nil
	}
	return *c, true, nil
}

// List returns clients ordered by msisdn.
func (r *ClientMemoryRepo) List(ctx context.Context) ([]model.Client, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Msisdn < out[j].Msisdn })
	return out, nil
}

func (r *ClientMemoryRepo) Create(ctx context.Context, c model.Client) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.Msisdn]; ok {
		return fmt.Errorf("client %s: %w", c.Msisdn, repo.ErrExists)
	}
	r.clients[c.Msisdn] = &c
	return nil
}

func (r *ClientMemoryRepo) ReplaceAll(ctx context.Context, clients []model.Client) error {
	_ = ctx

	m := make(map[string]*model.Client, len(clients))
	for i := range clients {
		c := clients[i]
		m[c.Msisdn] = &c
	}

	r.mu.Lock()
	r.clients = m
	r.mu.Unlock()
	return nil
}

func (r *ClientMemoryRepo) AddBalance(ctx context.Context, msisdn string, delta model.Money) (model.Money, error) {
	var bal model.Money
	err := r.update(ctx, msisdn, func(c *model.Client) {
		c.Balance += delta
		bal = c.Balance
	})
	return bal, err
}

func (r *ClientMemoryRepo) ApplyCharge(ctx context.Context, msisdn string, amount model.Money, usedMinutes int) (model.Client, error) {
	var out model.Client
	err := r.update(ctx, msisdn, func(c *model.Client) {
		if amount > 0 {
			c.Balance -= amount
		}
		c.RemainingMinutes = max(c.RemainingMinutes-max(usedMinutes, 0), 0)
		out = *c
	})
	return out, err
}

func (r *ClientMemoryRepo) SetTariff(ctx context.Context, msisdn string, tariffID int64, remaining int) error {
	return r.update(ctx, msisdn, func(c *model.Client) {
		c.TariffID = tariffID
		c.RemainingMinutes = max(remaining, 0)
	})
}

func (r *ClientMemoryRepo) SetRemaining(ctx context.Context, msisdn string, remaining int) error {
	return r.update(ctx, msisdn, func(c *model.Client) {
		c.RemainingMinutes = max(remaining, 0)
	})
}

func (r *ClientMemoryRepo) update(ctx context.Context, msisdn string, fn func(c *model.Client)) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[msisdn]
	if !ok {
		return fmt.Errorf("client %s: %w", msisdn, repo.ErrNotFound)
	}
	fn(c)
	return nil
}
