// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package generator

import (
	"context"
	"sync"
)

// Phaser is a reusable barrier whose set of parties may change between and
// during phases. A phase advances when every registered party has arrived;
// parties that arrive-and-deregister leave the set without waiting.
type Phaser struct {
	mu      sync.Mutex
	parties int
	arrived int
	phase   int
	next    chan struct{} // closed when the current phase advances
}

func NewPhaser(parties int) *Phaser {
	return &Phaser{parties: parties, next: make(chan struct{})}
}

// Register adds one party and returns the party count.
func (p *Phaser) Register() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.parties++
	return p.parties
}

// Deregister removes one party without arriving. The leaving party must not
// have arrived in the current phase; its arrival would still be counted.
func (p *Phaser) Deregister() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parties > 0 {
		p.parties--
	}
	p.advanceLocked()
	return p.parties
}

// ArriveAndDeregister is Deregister for a party that finished its work.
func (p *Phaser) ArriveAndDeregister() {
	p.Deregister()
}

// ArriveAndAwaitAdvance blocks until the current phase completes and returns
// the new phase number. On ctx cancellation the arrival is withdrawn.
func (p *Phaser) ArriveAndAwaitAdvance(ctx context.Context) (int, error) {
	p.mu.Lock()
	phase := p.phase
	next := p.next
	p.arrived++
	p.advanceLocked()
	if p.phase != phase {
		cur := p.phase
		p.mu.Unlock()
		return cur, nil
	}
	p.mu.Unlock()

	select {
	case <-next:
		return phase + 1, nil
	case <-ctx.Done():
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.phase != phase {
			return phase + 1, nil
		}
		p.arrived--
		return phase, ctx.Err()
	}
}

func (p *Phaser) Parties() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parties
}

func (p *Phaser) Phase() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *Phaser) advanceLocked() {
	if p.parties == 0 || p.arrived < p.parties {
		return
	}
	p.phase++
	p.arrived = 0
	close(p.next)
	p.next = make(chan struct{})
}
