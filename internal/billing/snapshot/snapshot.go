// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package snapshot carries full cache snapshots between brt and hrs over
// the bus: client states one way, tariffs the other.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/bus"
	"telecom_billing_sim/internal/logging"
)

const (
	clientsKey = "clients"
	tariffsKey = "tariffs"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type BusPublisher struct {
	pub Publisher
}

func NewBusPublisher(pub Publisher) *BusPublisher {
	return &BusPublisher{pub: pub}
}

func (b *BusPublisher) PublishClients(ctx context.Context, states []model.ClientState) error {
	return b.publish(ctx, bus.TopicClientSnapshot, clientsKey, states)
}

func (b *BusPublisher) PublishTariffs(ctx context.Context, tariffs []model.Tariff) error {
	return b.publish(ctx, bus.TopicTariffSnapshot, tariffsKey, tariffs)
}

func (b *BusPublisher) publish(ctx context.Context, topic, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", key, err)
	}
	return b.pub.Publish(ctx, topic, []byte(key), data)
}

// ClientHandler decodes a client snapshot and hands it to apply. A broken
// snapshot is logged and dropped; the next push replaces it anyway.
func ClientHandler(apply func([]model.ClientState), logger logging.Logger) bus.Handler {
	return func(_ context.Context, msg bus.Message) error {
		var states []model.ClientState
		if err := json.Unmarshal(msg.Value, &states); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"topic":  msg.Topic,
				"offset": msg.Offset,
			}).Error("dropping broken client snapshot")
			return nil
		}
		apply(states)
		return nil
	}
}

func TariffHandler(apply func([]model.Tariff), logger logging.Logger) bus.Handler {
	return func(_ context.Context, msg bus.Message) error {
		var tariffs []model.Tariff
		if err := json.Unmarshal(msg.Value, &tariffs); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"topic":  msg.Topic,
				"offset": msg.Offset,
			}).Error("dropping broken tariff snapshot")
			return nil
		}
		apply(tariffs)
		return nil
	}
}
