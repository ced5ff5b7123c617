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
	"sync"

	"telecom_billing_sim/internal/billing/model"
)

type CDRMemoryRepo struct {
	mu   sync.Mutex
	recs []model.CallRecord
}

func NewCDRMemoryRepo() *CDRMemoryRepo {
	return &CDRMemoryRepo{}
}

func (r *CDRMemoryRepo) SaveAll(ctx context.Context, recs []model.CallRecord) error {
	_ = ctx

	r.mu.Lock()
	r.recs = append(r.recs, recs...)
	r.mu.Unlock()

	return nil
}

func (r *CDRMemoryRepo) Count(ctx context.Context) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.recs), nil
}

// Records returns a copy of everything saved so far.
func (r *CDRMemoryRepo) Records() []model.CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.CallRecord, len(r.recs))
	copy(out, r.recs)
	return out
}
