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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_billing_sim/internal/billing/model"
)

func testSubs() []model.Subscriber {
	return []model.Subscriber{
		{ID: 1, PhoneNumber: "79990000001", Local: true},
		{ID: 2, PhoneNumber: "79990000002", Local: true},
		{ID: 3, PhoneNumber: "79990000003", Local: false},
		{ID: 4, PhoneNumber: "79990000004", Local: false},
	}
}

func TestGeneratePartitionBounds(t *testing.T) {
	const start, end = int64(1672531200), int64(1672531200 + 31*86400)
	rnd := rand.New(rand.NewPCG(1, 2))

	recs, err := generatePartition(testSubs(), start, end, rnd)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Start, start)
		assert.Less(t, r.Start, end)
		assert.Greater(t, r.Duration(), int64(0))
		assert.Less(t, r.Duration(), int64(maxCallSeconds))
		assert.NotEqual(t, r.Caller, r.Callee)
		assert.NotEqual(t, model.DirUnknown, r.Direction)
	}
}

func TestGeneratePartitionMirrorsLocalCalls(t *testing.T) {
	subs := []model.Subscriber{
		{ID: 1, PhoneNumber: "79990000001", Local: true},
		{ID: 2, PhoneNumber: "79990000002", Local: true},
	}
	recs, err := generatePartition(subs, 0, 10*86400, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	require.Zero(t, len(recs)%2)

	for i := 0; i < len(recs); i += 2 {
		assert.Equal(t, recs[i].Mirror(), recs[i+1])
	}
}

func TestGeneratePartitionForeignCallsNotMirrored(t *testing.T) {
	subs := []model.Subscriber{
		{ID: 1, PhoneNumber: "79990000001", Local: false},
		{ID: 2, PhoneNumber: "79990000002", Local: false},
	}
	recs, err := generatePartition(subs, 0, 5*86400, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)

	for i := 1; i < len(recs); i++ {
		assert.Greater(t, recs[i].Start, recs[i-1].Start)
	}
}

func TestGeneratePartitionEmptyInterval(t *testing.T) {
	recs, err := generatePartition(testSubs(), 100, 100, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = generatePartition(testSubs(), 200, 100, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGeneratePartitionNeedsTwoSubscribers(t *testing.T) {
	_, err := generatePartition(testSubs()[:1], 0, 100, rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, ErrNotEnoughSubscribers)
}

func TestSplitInterval(t *testing.T) {
	parts := splitInterval(0, 10, 3)
	require.Len(t, parts, 3)
	assert.Equal(t, []Interval{{0, 3}, {3, 6}, {6, 10}}, parts)

	parts = splitInterval(5, 5, 4)
	assert.Equal(t, []Interval{{5, 5}}, parts)

	parts = splitInterval(0, 100, 0)
	assert.Equal(t, []Interval{{0, 100}}, parts)
}
