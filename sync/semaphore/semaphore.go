// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides counting semaphores that hand out slot
// ids.
package semaphore

import (
	"sync"
	"sync/atomic"
)

// Semaphore is a semaphore of a fixed number of slots.
// Each holder owns one slot id in [0, Capacity()).
type Semaphore struct {
	name string
	ch   chan int

	reqs atomic.Int64
}

// New creates a new semaphore with name and capacity.
func New(name string, n int) *Semaphore {
	ch := make(chan int, n)
	for i := 0; i < n; i++ {
		ch <- i
	}
	return &Semaphore{
		name: name,
		ch:   ch,
	}
}

// TryAcquire acquires a slot if one is free, without waiting.
// It returns the slot id and func to release it. The func may be
// called more than once.
func (s *Semaphore) TryAcquire() (int, func(), bool) {
	select {
	case slot := <-s.ch:
		s.reqs.Add(1)
		var once sync.Once
		return slot, func() {
			once.Do(func() {
				s.ch <- slot
			})
		}, true
	default:
		return -1, func() {}, false
	}
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return cap(s.ch)
}

// NumServs returns number of slots currently held.
func (s *Semaphore) NumServs() int {
	return cap(s.ch) - len(s.ch)
}

// NumRequests returns total number of acquisitions.
func (s *Semaphore) NumRequests() int {
	return int(s.reqs.Load())
}
