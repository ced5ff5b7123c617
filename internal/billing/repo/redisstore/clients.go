// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package redisstore keeps the canonical billing clients in Redis: one hash per
// client plus an index set of all msisdns.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
)

const (
	indexKey = "clients"

	fieldTariff    = "tariff_id"
	fieldBalance   = "balance"
	fieldRemaining = "remaining_minutes"

	connectTimeout = 5 * time.Second
)

func clientKey(msisdn string) string {
	return "client:" + msisdn
}

// Connect opens a client and checks it with a ping.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: connectTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

type ClientStore struct {
	client *redis.Client
}

func NewClientStore(client *redis.Client) *ClientStore {
	return &ClientStore{client: client}
}

func (s *ClientStore) Get(ctx context.Context, msisdn string) (model.Client, bool, error) {
	h, err := s.client.HGetAll(ctx, clientKey(msisdn)).Result()
	if err != nil {
		return model.Client{}, false, err
	}
	// HGetAll отдаёт пустую map, если ключа нет
	if len(h) == 0 {
		return model.Client{}, false, nil
	}

	c, err := clientFromHash(msisdn, h)
	if err != nil {
		return model.Client{}, false, err
	}
	return c, true, nil
}

func (s *ClientStore) List(ctx context.Context) ([]model.Client, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, clientKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Client, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			continue
		}
		c, err := clientFromHash(ids[i], h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *ClientStore) Create(ctx context.Context, c model.Client) error {
	added, err := s.client.SAdd(ctx, indexKey, c.Msisdn).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		return fmt.Errorf("client %s: %w", c.Msisdn, repo.ErrExists)
	}
	return s.client.HSet(ctx, clientKey(c.Msisdn), toHash(c)).Err()
}

func (s *ClientStore) ReplaceAll(ctx context.Context, clients []model.Client) error {
	old, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range old {
			p.Del(ctx, clientKey(id))
		}
		p.Del(ctx, indexKey)
		for _, c := range clients {
			p.SAdd(ctx, indexKey, c.Msisdn)
			p.HSet(ctx, clientKey(c.Msisdn), toHash(c))
		}
		return nil
	})
	return err
}

func (s *ClientStore) AddBalance(ctx context.Context, msisdn string, delta model.Money) (model.Money, error) {
	if err := s.ensureExists(ctx, msisdn); err != nil {
		return 0, err
	}
	bal, err := s.client.HIncrBy(ctx, clientKey(msisdn), fieldBalance, int64(delta)).Result()
	if err != nil {
		return 0, err
	}
	return model.Money(bal), nil
}

// applyCharge: KEYS[1] client hash; ARGV amount, used minutes, balance field,
// remaining field. Returns HGETALL of the hash.
var applyCharge = redis.NewScript(`
local amount = tonumber(ARGV[1])
if amount > 0 then
	redis.call('HINCRBY', KEYS[1], ARGV[3], -amount)
end
local left = tonumber(redis.call('HGET', KEYS[1], ARGV[4]) or '0') - tonumber(ARGV[2])
if left < 0 then
	left = 0
end
redis.call('HSET', KEYS[1], ARGV[4], left)
return redis.call('HGETALL', KEYS[1])
`)

func (s *ClientStore) ApplyCharge(ctx context.Context, msisdn string, amount model.Money, usedMinutes int) (model.Client, error) {
	if err := s.ensureExists(ctx, msisdn); err != nil {
		return model.Client{}, err
	}

	flat, err := applyCharge.Run(ctx, s.client, []string{clientKey(msisdn)},
		int64(amount), max(usedMinutes, 0), fieldBalance, fieldRemaining,
	).StringSlice()
	if err != nil {
		return model.Client{}, err
	}

	h := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		h[flat[i]] = flat[i+1]
	}
	return clientFromHash(msisdn, h)
}

func (s *ClientStore) SetTariff(ctx context.Context, msisdn string, tariffID int64, remaining int) error {
	if err := s.ensureExists(ctx, msisdn); err != nil {
		return err
	}
	return s.client.HSet(ctx, clientKey(msisdn),
		fieldTariff, tariffID,
		fieldRemaining, max(remaining, 0),
	).Err()
}

func (s *ClientStore) SetRemaining(ctx context.Context, msisdn string, remaining int) error {
	if err := s.ensureExists(ctx, msisdn); err != nil {
		return err
	}
	return s.client.HSet(ctx, clientKey(msisdn), fieldRemaining, max(remaining, 0)).Err()
}

func (s *ClientStore) ensureExists(ctx context.Context, msisdn string) error {
	ok, err := s.client.SIsMember(ctx, indexKey, msisdn).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("client %s: %w", msisdn, repo.ErrNotFound)
	}
	return nil
}

func toHash(c model.Client) map[string]any {
	return map[string]any{
		fieldTariff:    c.TariffID,
		fieldBalance:   int64(c.Balance),
		fieldRemaining: max(c.RemainingMinutes, 0),
	}
}

var errBadHash = errors.New("bad client hash")

func clientFromHash(msisdn string, h map[string]string) (model.Client, error) {
	tariff, err := strconv.ParseInt(h[fieldTariff], 10, 64)
	if err != nil {
		return model.Client{}, fmt.Errorf("%w %s: tariff: %v", errBadHash, msisdn, err)
	}
	bal, err := strconv.ParseInt(h[fieldBalance], 10, 64)
	if err != nil {
		return model.Client{}, fmt.Errorf("%w %s: balance: %v", errBadHash, msisdn, err)
	}
	rem, err := strconv.Atoi(h[fieldRemaining])
	if err != nil {
		return model.Client{}, fmt.Errorf("%w %s: remaining: %v", errBadHash, msisdn, err)
	}
	return model.Client{
		Msisdn:           msisdn,
		TariffID:         tariff,
		Balance:          model.Money(bal),
		RemainingMinutes: rem,
	}, nil
}
