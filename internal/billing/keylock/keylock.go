// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package keylock serializes work per key with a fixed set of mutexes.
package keylock

import (
	"hash/maphash"
	"sync"
)

// Striped maps every key onto one of n mutexes. Two keys may share a stripe,
// one key always gets the same one.
type Striped struct {
	seed    maphash.Seed
	stripes []sync.Mutex
}

func New(n int) *Striped {
	if n <= 0 {
		n = 64
	}
	return &Striped{
		seed:    maphash.MakeSeed(),
		stripes: make([]sync.Mutex, n),
	}
}

func (s *Striped) stripe(key string) *sync.Mutex {
	h := maphash.String(s.seed, key)
	return &s.stripes[h%uint64(len(s.stripes))]
}

// Lock locks key and returns the matching unlock.
func (s *Striped) Lock(key string) func() {
	m := s.stripe(key)
	m.Lock()
	return m.Unlock
}

// Do runs fn while holding the lock for key.
func (s *Striped) Do(key string, fn func()) {
	unlock := s.Lock(key)
	defer unlock()
	fn()
}
