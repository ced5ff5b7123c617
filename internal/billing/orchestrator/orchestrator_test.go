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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"telecom_billing_sim/internal/billing/cache"
	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo/memory"
	"telecom_billing_sim/internal/billing/wire"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/logging"
	"telecom_billing_sim/internal/mocks"
)

const (
	alice = "79990000001"
	bob   = "79990000002"

	jan = int64(1673000000) // 2023-01-06
	feb = int64(1675300000) // 2023-02-02
)

var (
	perMinute = model.Tariff{ID: 11, Name: "Классика", Class: model.TariffPerMinute, InNetOut: 150, OtherOut: 250}
	bucket    = model.Tariff{ID: 12, Name: "Помесячный", Class: model.TariffMonthlyBucket, InNetOut: 150, OtherOut: 150, MonthlyLimitMinutes: 50, MonthlyFee: 10000}
)

type fixture struct {
	o       *Orchestrator
	rater   *mocks.MockRater
	pub     *mocks.MockSnapshotPublisher
	notify  *mocks.MockSubscriberNotifier
	clients *memory.ClientMemoryRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		rater:   mocks.NewMockRater(ctrl),
		pub:     mocks.NewMockSnapshotPublisher(ctrl),
		notify:  mocks.NewMockSubscriberNotifier(ctrl),
		clients: memory.NewClientMemoryRepo(),
	}

	require.NoError(t, f.clients.ReplaceAll(context.Background(), []model.Client{
		{Msisdn: alice, TariffID: 11, Balance: 10000},
		{Msisdn: bob, TariffID: 12, Balance: 10000, RemainingMinutes: 50},
	}))

	tariffs := cache.New[int64, model.Tariff](cache.Options{Name: "tariffs", MaxEntries: 100})
	f.o = New(Config{Workers: 2, Seed: 7}, f.clients, f.rater, tariffs, f.pub, f.notify, logging.Discard(), nil)
	f.o.ApplyTariffSnapshot([]model.Tariff{perMinute, bucket})
	t.Cleanup(f.o.Close)

	return f
}

func intPtr(v int) *int { return &v }

func line(caller, callee string, start, end int64) string {
	return wire.EncodeRecord(model.CallRecord{Direction: model.DirOutgoing, Caller: caller, Callee: callee, Start: start, End: end}) + "\n"
}

func (f *fixture) client(t *testing.T, msisdn string) model.Client {
	t.Helper()
	c, ok, err := f.clients.Get(context.Background(), msisdn)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}

func TestProcessBatchChargesCaller(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().
		Calculate(gomock.Any(), model.RatingRequest{
			Direction:        model.DirOutgoing,
			Caller:           alice,
			Callee:           bob,
			Start:            jan,
			End:              jan + 61,
			TariffID:         11,
			RemainingMinutes: intPtr(0),
		}).
		Return(model.Charge{SubscriberID: alice, Amount: 300}, nil)

	res := f.o.ProcessBatch(context.Background(), line(alice, bob, jan, jan+61))
	assert.Equal(t, BatchResult{Lines: 1, Processed: 1}, res)
	assert.Equal(t, model.Money(9700), f.client(t, alice).Balance)
	assert.Equal(t, 1, f.o.Cycle())
}

func TestProcessBatchOneCyclePerBoundary(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).
		Return(model.Charge{SubscriberID: alice, Amount: 100}, nil).Times(3)
	f.rater.EXPECT().MonthlyBills(gomock.Any(), 1, 2).
		Return([]model.Charge{{SubscriberID: bob, Amount: 10000}}, nil).Times(1)
	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Len(2)).Return(nil).Times(1)

	batch := line(alice, bob, jan, jan+30) +
		line(alice, bob, jan+100, jan+130) +
		line(alice, bob, feb, feb+30)

	res := f.o.ProcessBatch(context.Background(), batch)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, f.o.Cycle())

	// две месячные доплаты минимум по 15 рублей
	a := f.client(t, alice)
	assert.GreaterOrEqual(t, a.Balance, model.Money(10000-300+2*1500))

	b := f.client(t, bob)
	if b.TariffID == bucket.ID {
		assert.Equal(t, bucket.MonthlyLimitMinutes, b.RemainingMinutes)
	}
	assert.Greater(t, b.Balance, model.Money(0))
}

func TestFailedCycleDoesNotAdvance(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(model.Charge{SubscriberID: alice}, nil),
		f.rater.EXPECT().MonthlyBills(gomock.Any(), 1, 2).Return(nil, remote.ErrRemoteUnavailable),
		f.rater.EXPECT().MonthlyBills(gomock.Any(), 1, 2).Return(nil, nil),
		f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(model.Charge{SubscriberID: alice}, nil),
	)
	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Any()).Return(nil)

	res := f.o.ProcessBatch(context.Background(), line(alice, bob, jan, jan+30)+line(alice, bob, feb, feb+30))
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, f.o.Cycle())
	assert.Equal(t, model.Money(10000), f.client(t, alice).Balance)

	res = f.o.ProcessBatch(context.Background(), line(alice, bob, feb, feb+30))
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 2, f.o.Cycle())
}

func TestProcessBatchSkipsBadLines(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).
		Return(model.Charge{SubscriberID: alice, Amount: 200}, nil).Times(1)

	batch := "garbage\n" +
		line("74950000000", alice, jan, jan+60) +
		line(alice, bob, jan+10, jan+10) +
		line(alice, bob, jan, jan+60)

	res := f.o.ProcessBatch(context.Background(), batch)
	assert.Equal(t, BatchResult{Lines: 4, Malformed: 1, Skipped: 2, Processed: 1}, res)
}

func TestProcessBatchUnknownTariff(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.clients.Create(context.Background(), model.Client{Msisdn: "79990000003", TariffID: 99}))

	f.rater.EXPECT().Tariff(gomock.Any(), int64(99)).Return(model.Tariff{}, fmt.Errorf("hrs: %w", remote.ErrNotFound))

	res := f.o.ProcessBatch(context.Background(), line("79990000003", alice, jan, jan+60))
	assert.Equal(t, 1, res.Skipped)
}

func TestProcessBatchRatingFailureIsIsolated(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(model.Charge{}, remote.ErrRemoteTimeout),
		f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(model.Charge{SubscriberID: bob, Amount: 0, RemainingMinutes: 48, UsedMinutes: 2}, nil),
	)

	res := f.o.ProcessBatch(context.Background(), line(alice, bob, jan, jan+60)+line(bob, alice, jan+100, jan+160))
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, model.Money(10000), f.client(t, alice).Balance)
	assert.Equal(t, 48, f.client(t, bob).RemainingMinutes)
}

func TestHandleMessage(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).
		Return(model.Charge{SubscriberID: alice, Amount: 100}, nil)

	msg := bus.Message{Key: []byte("batch-1"), Value: wire.EncodeBase64(line(alice, bob, jan, jan+60))}
	require.NoError(t, f.o.HandleMessage(context.Background(), msg))
	assert.Equal(t, model.Money(9900), f.client(t, alice).Balance)

	// мусор не блокирует партицию
	require.NoError(t, f.o.HandleMessage(context.Background(), bus.Message{Value: []byte("%%%")}))
}

func TestSubmitAfterClose(t *testing.T) {
	f := newFixture(t)
	f.o.Close()

	_, err := f.o.Submit(context.Background(), line(alice, bob, jan, jan+60))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubmitConcurrentBatches(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().Calculate(gomock.Any(), gomock.Any()).
		Return(model.Charge{SubscriberID: alice, Amount: 10}, nil).Times(20)

	errs := make(chan error, 20)
	for i := range 20 {
		go func() {
			start := jan + int64(i*100)
			_, err := f.o.Submit(context.Background(), line(alice, bob, start, start+5))
			errs <- err
		}()
	}
	for range 20 {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, model.Money(10000-200), f.client(t, alice).Balance)
}

func TestPublishSnapshotError(t *testing.T) {
	f := newFixture(t)

	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Any()).Return(errors.New("kafka down"))
	err := f.o.PublishSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "kafka down"))
}

func TestLoadClientsFillsBucketMinutes(t *testing.T) {
	f := newFixture(t)

	f.rater.EXPECT().Tariff(gomock.Any(), int64(99)).Return(model.Tariff{}, remote.ErrNotFound)

	err := f.o.LoadClients(context.Background(), []model.Client{
		{Msisdn: alice, TariffID: 12, Balance: 500},
		{Msisdn: bob, TariffID: 11, Balance: 500},
		{Msisdn: "79990000003", TariffID: 99, Balance: 500},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, f.client(t, alice).RemainingMinutes)
	assert.Equal(t, 0, f.client(t, bob).RemainingMinutes)
	assert.Equal(t, int64(99), f.client(t, "79990000003").TariffID)
}

func TestReassignTariffsMovesDistinctClients(t *testing.T) {
	ctx := context.Background()

	for seed := uint64(1); seed <= 64; seed++ {
		clients := memory.NewClientMemoryRepo()
		list := []model.Client{
			{Msisdn: alice, TariffID: 11, Balance: 100},
			{Msisdn: bob, TariffID: 11, Balance: 100},
		}
		require.NoError(t, clients.ReplaceAll(ctx, list))

		tariffs := cache.New[int64, model.Tariff](cache.Options{Name: "tariffs"})
		o := New(Config{Workers: 1, Seed: seed}, clients, nil, tariffs, nil, nil, logging.Discard(), nil)
		o.ApplyTariffSnapshot([]model.Tariff{perMinute, bucket})

		changed := o.reassignTariffs(ctx, list)
		o.Close()

		stored, err := clients.List(ctx)
		require.NoError(t, err)

		moved := 0
		for _, c := range stored {
			if c.TariffID == bucket.ID {
				moved++
				assert.Equal(t, bucket.MonthlyLimitMinutes, c.RemainingMinutes)
			}
		}
		assert.Equal(t, changed, moved, "seed %d", seed)
		assert.ElementsMatch(t, stored, list, "seed %d", seed)
	}
}
