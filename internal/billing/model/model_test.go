// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := map[string]Money{
		"1.80": 180,
		"1,5":  150,
		"2":    200,
		"0.1":  10,
		"":     0,
		"-3.2": -320,
	}
	for in, want := range cases {
		got, err := ParseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMoney("1.2.3")
	assert.Error(t, err)
}

func TestMoneyCeilTo(t *testing.T) {
	assert.Equal(t, Money(150), Money(150).CeilTo(Tenth))
	assert.Equal(t, Money(160), Money(151).CeilTo(Tenth))
	assert.Equal(t, Money(10), Money(1).CeilTo(Tenth))
	assert.Equal(t, Money(0), Money(0).CeilTo(Tenth))
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Charge{SubscriberID: "79990000001", Amount: 250})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subscriber":"79990000001","amount":2.5,"remaining_minutes":0}`, string(b))

	var c Charge
	require.NoError(t, json.Unmarshal([]byte(`{"subscriber":"1","amount":"1.3"}`), &c))
	assert.Equal(t, Money(130), c.Amount)
}

func TestCallRecordMirror(t *testing.T) {
	rec := CallRecord{Direction: DirOutgoing, Caller: "a", Callee: "b", Start: 10, End: 70}
	m := rec.Mirror()

	assert.Equal(t, DirIncoming, m.Direction)
	assert.Equal(t, "b", m.Caller)
	assert.Equal(t, "a", m.Callee)
	assert.Equal(t, rec.Start, m.Start)
	assert.Equal(t, rec.End, m.End)
	assert.Equal(t, rec, m.Mirror())
}

func TestCallRecordMonths(t *testing.T) {
	// 2023-01-31 23:59:00 .. 2023-02-01 00:01:00 UTC
	rec := CallRecord{Start: 1675209540, End: 1675209660}
	assert.Equal(t, 1, rec.StartMonth())
	assert.Equal(t, 2, rec.EndMonth())
}

func TestRatingRequestDirectionJSON(t *testing.T) {
	b, err := json.Marshal(RatingRequest{Direction: DirOutgoing, Caller: "1", Callee: "2", Start: 1, End: 2, TariffID: 11})
	require.NoError(t, err)

	var got RatingRequest
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, DirOutgoing, got.Direction)
	assert.Equal(t, int64(11), got.TariffID)

	assert.Error(t, json.Unmarshal([]byte(`{"direction":"sideways"}`), &got))
}

func TestTariffStartingMinutes(t *testing.T) {
	assert.Equal(t, 50, Tariff{Class: TariffMonthlyBucket, MonthlyLimitMinutes: 50}.StartingMinutes())
	assert.Equal(t, 0, Tariff{Class: TariffPerMinute, MonthlyLimitMinutes: 50}.StartingMinutes())
}
