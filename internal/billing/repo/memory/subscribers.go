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
	"sync"
	"sync/atomic"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
)

type subSnap struct {
	byPhone map[string]model.Subscriber
	list    []model.Subscriber
	maxID   int64
}

// SubscriberMemoryRepo serves reads from an immutable snapshot; writers
// build a new one under mu.
type SubscriberMemoryRepo struct {
	mu sync.Mutex
	v  atomic.Value // *subSnap
}

func NewSubscriberMemoryRepo() *SubscriberMemoryRepo {
	r := &SubscriberMemoryRepo{}
	r.v.Store(&subSnap{byPhone: map[string]model.Subscriber{}})

	return r
}

func (r *SubscriberMemoryRepo) ReplaceAll(ctx context.Context, subs []model.Subscriber) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.v.Store(buildSubSnap(subs))

	return nil
}

func (r *SubscriberMemoryRepo) Add(ctx context.Context, sub model.Subscriber) (model.Subscriber, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.v.Load().(*subSnap)
	if _, ok := s.byPhone[sub.PhoneNumber]; ok {
		return model.Subscriber{}, repo.ErrExists
	}

	sub.ID = s.maxID + 1
	subs := make([]model.Subscriber, 0, len(s.list)+1)
	subs = append(subs, s.list...)
	subs = append(subs, sub)

	r.v.Store(buildSubSnap(subs))

	return sub, nil
}

func (r *SubscriberMemoryRepo) GetByPhone(ctx context.Context, phone string) (model.Subscriber, bool, error) {
	_ = ctx

	s := r.v.Load().(*subSnap)
	sub, ok := s.byPhone[phone]

	return sub, ok, nil
}

// All returns the pool ordered by id. The slice is shared, do not modify it.
func (r *SubscriberMemoryRepo) All(ctx context.Context) ([]model.Subscriber, error) {
	_ = ctx

	return r.v.Load().(*subSnap).list, nil
}

func buildSubSnap(subs []model.Subscriber) *subSnap {
	list := make([]model.Subscriber, len(subs))
	copy(list, subs)
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	m := make(map[string]model.Subscriber, len(list))
	var maxID int64
	for _, s := range list {
		m[s.PhoneNumber] = s
		if s.ID > maxID {
			maxID = s.ID
		}
	}

	return &subSnap{byPhone: m, list: list, maxID: maxID}
}
