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
	"telecom_billing_sim/internal/billing/textutil"
	"telecom_billing_sim/internal/config"
)

var (
	ErrInvalidMsisdn = errors.New("msisdn must be 11 digits starting with 7")
	ErrInvalidAmount = errors.New("amount must be at least 0.1")
	ErrSameTariff    = errors.New("client already has this tariff")
	ErrUnknownTariff = errors.New("unknown tariff")
)

func ValidMsisdn(msisdn string) bool {
	return len(msisdn) == 11 && msisdn[0] == '7' && textutil.IsDigits(msisdn)
}

// AddClient registers a new client with the starting balance and tells the
// generator about the number.
func (o *Orchestrator) AddClient(ctx context.Context, msisdn string, tariffID int64) (model.Client, error) {
	if !ValidMsisdn(msisdn) {
		return model.Client{}, ErrInvalidMsisdn
	}

	t, err := o.lookupTariff(ctx, tariffID)
	if err != nil {
		return model.Client{}, err
	}

	balance, err := model.ParseMoney(config.NewClientBalance)
	if err != nil {
		return model.Client{}, err
	}

	c := model.Client{
		Msisdn:           msisdn,
		TariffID:         t.ID,
		Balance:          balance,
		RemainingMinutes: t.StartingMinutes(),
	}
	if err := o.clients.Create(ctx, c); err != nil {
		return model.Client{}, err
	}

	entry := o.logger.WithFields(logrus.Fields{"msisdn": msisdn, "tariff_id": t.ID})
	if o.notifier != nil {
		if err := o.notifier.NewSubscriber(ctx, msisdn); err != nil {
			entry.WithError(err).Warn("generator was not notified about new client")
		}
	}
	o.publishAfterChange(ctx)

	entry.Info("client added")
	return c, nil
}

// TopUp adds money to a client balance and returns the new balance.
func (o *Orchestrator) TopUp(ctx context.Context, msisdn string, amount model.Money) (model.Money, error) {
	if amount < model.Tenth {
		return 0, ErrInvalidAmount
	}

	var balance model.Money
	err := o.withClient(msisdn, func() error {
		var err error
		balance, err = o.clients.AddBalance(ctx, msisdn, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	o.logger.WithFields(logrus.Fields{
		"msisdn":  msisdn,
		"amount":  amount.String(),
		"balance": balance.String(),
	}).Info("balance topped up")
	return balance, nil
}

// ChangeTariff switches the client and resets the bucket to the new tariff.
func (o *Orchestrator) ChangeTariff(ctx context.Context, msisdn string, tariffID int64) (model.Client, error) {
	t, err := o.lookupTariff(ctx, tariffID)
	if err != nil {
		return model.Client{}, err
	}

	var updated model.Client
	err = o.withClient(msisdn, func() error {
		c, ok, err := o.clients.Get(ctx, msisdn)
		if err != nil {
			return err
		}
		if !ok {
			return repo.ErrNotFound
		}
		if c.TariffID == t.ID {
			return ErrSameTariff
		}
		if err := o.clients.SetTariff(ctx, msisdn, t.ID, t.StartingMinutes()); err != nil {
			return err
		}
		c.TariffID = t.ID
		c.RemainingMinutes = t.StartingMinutes()
		updated = c
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}

	o.publishAfterChange(ctx)
	return updated, nil
}

func (o *Orchestrator) Client(ctx context.Context, msisdn string) (model.Client, error) {
	c, ok, err := o.clients.Get(ctx, msisdn)
	if err != nil {
		return model.Client{}, err
	}
	if !ok {
		return model.Client{}, repo.ErrNotFound
	}
	return c, nil
}

func (o *Orchestrator) ClientState(ctx context.Context, msisdn string) (model.ClientState, error) {
	c, err := o.Client(ctx, msisdn)
	if err != nil {
		return model.ClientState{}, err
	}
	return c.State(), nil
}

// LoadClients replaces every client with the seed list. Bucket clients start
// with the full monthly limit; a tariff that cannot be resolved leaves zero.
func (o *Orchestrator) LoadClients(ctx context.Context, clients []model.Client) error {
	for i := range clients {
		t, err := o.tariff(ctx, clients[i].TariffID)
		if err != nil {
			o.logger.WithError(err).WithFields(logrus.Fields{
				"msisdn":    clients[i].Msisdn,
				"tariff_id": clients[i].TariffID,
			}).Warn("tariff unavailable for seeded client")
			continue
		}
		clients[i].RemainingMinutes = t.StartingMinutes()
	}

	if err := o.clients.ReplaceAll(ctx, clients); err != nil {
		return fmt.Errorf("replace clients: %w", err)
	}
	o.logger.WithField("clients", len(clients)).Info("clients loaded")
	return nil
}

func (o *Orchestrator) lookupTariff(ctx context.Context, id int64) (model.Tariff, error) {
	t, err := o.tariff(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Tariff{}, fmt.Errorf("%w: %d", ErrUnknownTariff, id)
	}
	return t, err
}

func (o *Orchestrator) publishAfterChange(ctx context.Context) {
	if err := o.PublishSnapshot(ctx); err != nil {
		o.logger.WithError(err).Error("failed to publish client snapshot")
	}
}
