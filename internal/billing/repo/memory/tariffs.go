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
	"sort"
	"sync/atomic"

	"telecom_billing_sim/internal/billing/model"
)

type tariffSnap struct {
	byID map[int64]model.Tariff
	list []model.Tariff
}

type TariffMemoryRepo struct {
	v atomic.Value // *tariffSnap
}

func NewTariffMemoryRepo() *TariffMemoryRepo {
	r := &TariffMemoryRepo{}
	r.v.Store(&tariffSnap{byID: map[int64]model.Tariff{}})
	return r
}

func (r *TariffMemoryRepo) ReplaceAll(ctx context.Context, tariffs []model.Tariff) error {
	_ = ctx

	list := make([]model.Tariff, len(tariffs))
	copy(list, tariffs)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	byID := make(map[int64]model.Tariff, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}

	r.v.Store(&tariffSnap{byID: byID, list: list})
	return nil
}

func (r *TariffMemoryRepo) Get(ctx context.Context, id int64) (model.Tariff, bool, error) {
	_ = ctx

	t, ok := r.v.Load().(*tariffSnap).byID[id]
	return t, ok, nil
}

func (r *TariffMemoryRepo) All(ctx context.Context) ([]model.Tariff, error) {
	_ = ctx

	return r.v.Load().(*tariffSnap).list, nil
}
