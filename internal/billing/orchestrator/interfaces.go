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

	"telecom_billing_sim/internal/billing/model"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/mock_orchestrator.go -package=mocks

// Rater is the rating service as seen from billing.
type Rater interface {
	Calculate(ctx context.Context, req model.RatingRequest) (model.Charge, error)
	MonthlyBills(ctx context.Context, startMonth, endMonth int) ([]model.Charge, error)
	Tariff(ctx context.Context, id int64) (model.Tariff, error)
}

// SnapshotPublisher pushes the full client projection to the rating side.
type SnapshotPublisher interface {
	PublishClients(ctx context.Context, states []model.ClientState) error
}

// SubscriberNotifier tells the generator about a new client.
type SubscriberNotifier interface {
	NewSubscriber(ctx context.Context, msisdn string) error
}
