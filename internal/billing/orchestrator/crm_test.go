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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/remote"
	"telecom_billing_sim/internal/billing/repo"
)

func TestValidMsisdn(t *testing.T) {
	assert.True(t, ValidMsisdn("79991234567"))
	assert.False(t, ValidMsisdn("89991234567"))
	assert.False(t, ValidMsisdn("7999123456"))
	assert.False(t, ValidMsisdn("7999123456a"))
}

func TestAddClient(t *testing.T) {
	f := newFixture(t)
	const carol = "79990000003"

	f.notify.EXPECT().NewSubscriber(gomock.Any(), carol).Return(nil)
	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Len(3)).Return(nil)

	c, err := f.o.AddClient(context.Background(), carol, 12)
	require.NoError(t, err)
	assert.Equal(t, model.Client{Msisdn: carol, TariffID: 12, Balance: 10000, RemainingMinutes: 50}, c)
	assert.Equal(t, c, f.client(t, carol))
}

func TestAddClientNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	const carol = "79990000003"

	f.notify.EXPECT().NewSubscriber(gomock.Any(), carol).Return(errors.New("cdr down"))
	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.o.AddClient(context.Background(), carol, 11)
	require.NoError(t, err)
}

func TestAddClientRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.o.AddClient(context.Background(), "12345", 11)
	assert.ErrorIs(t, err, ErrInvalidMsisdn)

	f.rater.EXPECT().Tariff(gomock.Any(), int64(99)).Return(model.Tariff{}, remote.ErrNotFound)
	_, err = f.o.AddClient(context.Background(), "79990000003", 99)
	assert.ErrorIs(t, err, ErrUnknownTariff)

	_, err = f.o.AddClient(context.Background(), alice, 11)
	assert.ErrorIs(t, err, repo.ErrExists)
}

func TestTopUp(t *testing.T) {
	f := newFixture(t)

	bal, err := f.o.TopUp(context.Background(), alice, 550)
	require.NoError(t, err)
	assert.Equal(t, model.Money(10550), bal)

	_, err = f.o.TopUp(context.Background(), alice, 5)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.o.TopUp(context.Background(), "79990000009", 100)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestChangeTariff(t *testing.T) {
	f := newFixture(t)

	f.pub.EXPECT().PublishClients(gomock.Any(), gomock.Len(2)).Return(nil)

	c, err := f.o.ChangeTariff(context.Background(), alice, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.TariffID)
	assert.Equal(t, 50, c.RemainingMinutes)
	assert.Equal(t, model.Money(10000), c.Balance)

	_, err = f.o.ChangeTariff(context.Background(), alice, 12)
	assert.ErrorIs(t, err, ErrSameTariff)

	_, err = f.o.ChangeTariff(context.Background(), "79990000009", 11)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestClientState(t *testing.T) {
	f := newFixture(t)

	st, err := f.o.ClientState(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, model.ClientState{SubscriberID: bob, TariffID: 12, RemainingMinutes: 50}, st)

	_, err = f.o.ClientState(context.Background(), "79990000009")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
