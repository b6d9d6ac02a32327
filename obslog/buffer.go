package obslog

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BufferConfig configures a Buffer.
type BufferConfig struct {
	// Capacity is the high-water mark in entries. Default: 1024
	Capacity int

	// KeepLevel is the severity at or above which entries are retained
	// when the buffer is full. Below it they are dropped; LevelDebug
	// retains everything. Default: warn
	KeepLevel Level

	// MaxWait bounds how long a retained entry waits for a slot before
	// falling back to a forced synchronous write. Default: 250ms
	MaxWait time.Duration
}

// Buffer is the bounded stage between entry production and the physical
// write. Producers only ever block on its admission policy, never on the
// sink itself.
type Buffer struct {
	cfg   BufferConfig
	sem   *semaphore.Weighted
	queue chan []byte

	wmu sync.Mutex // serializes sink writes between drain and forced flushes
	w   io.Writer

	mu      sync.RWMutex // guards queue close against concurrent sends
	closed  bool
	dropped atomic.Int64
	wg      sync.WaitGroup
}

// NewBuffer creates a Buffer draining into w and starts its writer.
func NewBuffer(w io.Writer, cfg BufferConfig) *Buffer {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1024
	}
	if cfg.KeepLevel == 0 {
		cfg.KeepLevel = LevelWarn
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 250 * time.Millisecond
	}

	b := &Buffer{
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.Capacity)),
		queue: make(chan []byte, cfg.Capacity),
		w:     w,
	}
	b.wg.Add(1)
	go b.drain()
	return b
}

// Write admits one serialized entry. Below the high-water mark admission is
// immediate. At the mark, entries below KeepLevel are dropped; entries at or
// above it wait up to MaxWait for a slot and then write synchronously.
func (b *Buffer) Write(level Level, line []byte) {
	if b.sem.TryAcquire(1) {
		if !b.enqueue(line) {
			b.sem.Release(1)
			b.writeSync(line)
		}
		return
	}

	if level < b.cfg.KeepLevel {
		b.dropped.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.MaxWait)
	defer cancel()
	if err := b.sem.Acquire(ctx, 1); err != nil {
		// Bounded wait exhausted: retained entries are never dropped.
		b.writeSync(line)
		return
	}
	if !b.enqueue(line) {
		b.sem.Release(1)
		b.writeSync(line)
	}
}

// enqueue sends to the queue unless the buffer is closed.
func (b *Buffer) enqueue(line []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	b.queue <- line
	return true
}

// Dropped reports how many entries have been discarded at the high-water
// mark.
func (b *Buffer) Dropped() int64 {
	return b.dropped.Load()
}

// Close stops admission, flushes queued entries, and waits for the writer.
// Entries written after Close go directly to the sink.
func (b *Buffer) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBufferClosed
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *Buffer) drain() {
	defer b.wg.Done()
	for line := range b.queue {
		b.writeSync(line)
		b.sem.Release(1)
	}
}

func (b *Buffer) writeSync(line []byte) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	_, _ = b.w.Write(line)
}
