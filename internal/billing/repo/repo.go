// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package repo

import (
	"context"
	"errors"

	"telecom_billing_sim/internal/billing/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// SubscriberRepository is the generator's subscriber pool.
type SubscriberRepository interface {
	ReplaceAll(ctx context.Context, subs []model.Subscriber) error
	// Add assigns the next id; ErrExists when the phone is already known.
	Add(ctx context.Context, sub model.Subscriber) (model.Subscriber, error)
	GetByPhone(ctx context.Context, phone string) (model.Subscriber, bool, error)
	All(ctx context.Context) ([]model.Subscriber, error)
}

type TariffRepository interface {
	ReplaceAll(ctx context.Context, tariffs []model.Tariff) error
	Get(ctx context.Context, id int64) (model.Tariff, bool, error)
	All(ctx context.Context) ([]model.Tariff, error)
}

// CDRRepository keeps every record the generator flushed.
type CDRRepository interface {
	SaveAll(ctx context.Context, recs []model.CallRecord) error
	Count(ctx context.Context) (int, error)
}

// ClientRepository is the canonical store of billing clients. Every method
// mutating one client is atomic for that client.
type ClientRepository interface {
	Get(ctx context.Context, msisdn string) (model.Client, bool, error)
	List(ctx context.Context) ([]model.Client, error)
	Create(ctx context.Context, c model.Client) error
	ReplaceAll(ctx context.Context, clients []model.Client) error

	AddBalance(ctx context.Context, msisdn string, delta model.Money) (model.Money, error)
	// ApplyCharge subtracts a positive amount and spends usedMinutes of the
	// stored bucket, never going below zero.
	ApplyCharge(ctx context.Context, msisdn string, amount model.Money, usedMinutes int) (model.Client, error)
	SetTariff(ctx context.Context, msisdn string, tariffID int64, remaining int) error
	SetRemaining(ctx context.Context, msisdn string, remaining int) error
}
