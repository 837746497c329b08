package vitals

import (
	"sync"
	"time"

	"stealthcompany.com/icudash/internal/patients"
)

// WindowSize is the number of samples kept in a rolling buffer
const WindowSize = 60

// Buffer is a fixed-capacity ring of the most recent samples. Once created
// it always holds exactly WindowSize samples.
type Buffer struct {
	mu      sync.RWMutex
	samples [WindowSize]Sample
	head    int // index of the oldest sample
}

// NewBuffer backfills a buffer with WindowSize samples spaced interval apart,
// the last one stamped at now
func NewBuffer(gen *Generator, status patients.Status, now time.Time, interval time.Duration) *Buffer {
	b := &Buffer{}
	for i := 0; i < WindowSize; i++ {
		at := now.Add(-time.Duration(WindowSize-1-i) * interval)
		b.samples[i] = gen.Next(status, at)
	}
	return b
}

// Push appends s and evicts the oldest sample
func (b *Buffer) Push(s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[b.head] = s
	b.head = (b.head + 1) % WindowSize
}

// Snapshot returns the samples oldest first
func (b *Buffer) Snapshot() []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Sample, 0, WindowSize)
	out = append(out, b.samples[b.head:]...)
	out = append(out, b.samples[:b.head]...)
	return out
}

// Latest returns the newest sample
func (b *Buffer) Latest() Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.samples[(b.head+WindowSize-1)%WindowSize]
}

// Len is always WindowSize
func (b *Buffer) Len() int {
	return WindowSize
}
