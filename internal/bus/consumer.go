// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"telecom_billing_sim/internal/logging"
)

type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
}

type Handler func(ctx context.Context, msg Message) error

// Consumer routes records to per-topic handlers and commits only what was
// handled; a failed record blocks its partition until restart.
type Consumer struct {
	client   *kgo.Client
	logger   logging.Logger
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewConsumer(brokers []string, groupID, clientID string, logger logging.Logger) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ClientID(clientID),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newConsumer(client, logger), nil
}

func newConsumer(client *kgo.Client, logger logging.Logger) *Consumer {
	return &Consumer{
		client:   client,
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// AddHandler registers a handler for a topic and subscribes to it.
func (c *Consumer) AddHandler(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[topic] = handler
	if c.client != nil {
		c.client.AddConsumeTopics(topic)
	}
}

// Start polls until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fetches := c.client.PollFetches(ctx)
		if errs := fetches.Errors(); len(errs) > 0 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("errors while polling: %v", errs)
			c.client.AllowRebalance()
			continue
		}

		var records []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})

		if commit := c.processRecords(ctx, records); len(commit) > 0 {
			if err := c.client.CommitRecords(ctx, commit...); err != nil {
				c.logger.WithError(err).Error("failed to commit records")
			}
		}
		c.client.AllowRebalance()
	}
}

func (c *Consumer) processRecords(ctx context.Context, records []*kgo.Record) []*kgo.Record {
	type topicPartition struct {
		topic     string
		partition int32
	}
	blocked := make(map[topicPartition]bool)
	lastSuccess := make(map[topicPartition]*kgo.Record)
	var order []topicPartition

	for _, record := range records {
		tp := topicPartition{topic: record.Topic, partition: record.Partition}
		if blocked[tp] {
			continue
		}

		c.mu.RLock()
		handler, ok := c.handlers[record.Topic]
		c.mu.RUnlock()

		if ok {
			err := handler(ctx, Message{
				Key:       record.Key,
				Value:     record.Value,
				Topic:     record.Topic,
				Partition: record.Partition,
				Offset:    record.Offset,
			})
			if err != nil {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"topic":     record.Topic,
					"partition": record.Partition,
					"offset":    record.Offset,
				}).Error("Failed to handle message - will retry on restart")
				blocked[tp] = true
				continue
			}
		} else {
			c.logger.WithField("topic", record.Topic).Warn("No handler registered for topic")
		}

		if _, seen := lastSuccess[tp]; !seen {
			order = append(order, tp)
		}
		lastSuccess[tp] = record
	}

	commit := make([]*kgo.Record, 0, len(order))
	for _, tp := range order {
		commit = append(commit, lastSuccess[tp])
	}
	return commit
}

func (c *Consumer) Close() {
	c.client.Close()
}
