// Package spinlock implements a short-hold mutual-exclusion primitive backed
// by a single atomic flag, ported from asynqro's Proof::SpinLock. It is
// meant only for critical sections of a handful of instructions (pointer
// swaps, small struct copies) — anything that can block should use a regular
// sync.Mutex instead.
package spinlock

import (
	"time"

	"go.uber.org/atomic"
)

const (
	spinIterations = 10
	sleepInterval  = time.Millisecond
)

// SpinLock is a non-reentrant lock that busy-spins for a bounded number of
// iterations before backing off with a short sleep, rather than parking the
// goroutine immediately like sync.Mutex does.
type SpinLock struct {
	held atomic.Bool
}

// TryLock attempts to acquire the lock, spinning up to spinIterations times.
// It returns false without blocking if the lock is still held afterward.
func (s *SpinLock) TryLock() bool {
	for i := 0; i < spinIterations; i++ {
		if s.held.CompareAndSwap(false, true) {
			return true
		}
	}

	return false
}

// Lock acquires the lock, sleeping sleepInterval between spin bursts until
// it succeeds.
func (s *SpinLock) Lock() {
	for !s.TryLock() {
		time.Sleep(sleepInterval)
	}
}

// Unlock releases the lock. Unlocking an already-unlocked SpinLock is
// undefined, same as sync.Mutex.
func (s *SpinLock) Unlock() {
	s.held.Store(false)
}
