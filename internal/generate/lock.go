package generate

import "sync/atomic"

// GenerationLock is a non-blocking lock that keeps a Generator from running
// two generations at once
type GenerationLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking
func (l *GenerationLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *GenerationLock) Release() {
	l.state.Store(0)
}
