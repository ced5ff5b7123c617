// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package cache provides the size- and TTL-bounded projections of client and
// tariff state kept on each side of the billing pipeline.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Loader fetches a value that is missing from the cache.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Observer receives hit/miss notifications; it may be nil.
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
}

type Options struct {
	Name       string
	MaxEntries int
	TTL        time.Duration
	Observer   Observer
}

// StateCache never blocks on I/O in Get: a miss returns false and the caller
// decides whether to go remote. Fetch is the read-through path.
type StateCache[K comparable, V any] struct {
	name string
	lru  *expirable.LRU[K, V]
	obs  Observer
	sf   singleflight.Group
}

func New[K comparable, V any](opts Options) *StateCache[K, V] {
	size := opts.MaxEntries
	if size <= 0 {
		size = 1000
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &StateCache[K, V]{
		name: opts.Name,
		lru:  expirable.NewLRU[K, V](size, nil, ttl),
		obs:  opts.Observer,
	}
}

func (c *StateCache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if c.obs != nil {
		if ok {
			c.obs.CacheHit(c.name)
		} else {
			c.obs.CacheMiss(c.name)
		}
	}
	return v, ok
}

func (c *StateCache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

func (c *StateCache[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// Keys returns live keys, oldest first.
func (c *StateCache[K, V]) Keys() []K {
	return c.lru.Keys()
}

func (c *StateCache[K, V]) Values() []V {
	return c.lru.Values()
}

func (c *StateCache[K, V]) Len() int {
	return c.lru.Len()
}

// Load replaces the whole content with a pushed snapshot.
func (c *StateCache[K, V]) Load(snapshot map[K]V) {
	c.lru.Purge()
	for k, v := range snapshot {
		c.lru.Add(k, v)
	}
}

// Fetch returns the cached value or calls load once per key, even when many
// goroutines miss at the same time, and fills the cache on success.
func (c *StateCache[K, V]) Fetch(ctx context.Context, key K, load Loader[K, V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.sf.Do(fmt.Sprint(key), func() (any, error) {
		v, err := load(ctx, key)
		if err != nil {
			return v, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
