// Package stream implements the Stream Limiter (C4): a byte-capped
// passthrough over a child process's stdout/stderr that signals overflow
// exactly once so the caller can kill a pathological child promptly.
//
// The cap is enforced at the byte-stream boundary (transform-on-the-wire),
// not by collecting then truncating, per spec.md's Design Notes (§9) —
// every byte past the cap is dropped as it arrives rather than buffered.
package stream

import (
	"bytes"
	"sync"
)

// Limiter is an io.Writer that forwards at most Cap bytes to an internal
// buffer, firing OnOverflow exactly once the first time it is exceeded.
// Safe for a single writer goroutine; Bytes/Truncated may be
// read concurrently after the writer goroutine has finished.
type Limiter struct {
	Cap       int64
	OnOverflow func()

	mu        sync.Mutex
	buf       bytes.Buffer
	written   int64
	overflowed bool
	fired     bool
}

// NewLimiter returns a Limiter capped at cap bytes. onOverflow, if non-nil,
// is invoked exactly once, in its own goroutine, the first time the cap is
// exceeded — Hook Runner uses this to request an immediate kill.
func NewLimiter(cap int64, onOverflow func()) *Limiter {
	return &Limiter{Cap: cap, OnOverflow: onOverflow}
}

// Write implements io.Writer. Once the cap is reached, subsequent bytes are
// silently dropped (never appended) so the downstream buffer never exceeds
// Cap bytes, satisfying the "bounded output" invariant in spec.md §8.
func (l *Limiter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(p)
	l.written += int64(n)

	if l.buf.Len() >= int(l.Cap) {
		l.markOverflow()
		return n, nil
	}

	room := int(l.Cap) - l.buf.Len()
	if len(p) > room {
		l.buf.Write(p[:room])
		l.markOverflow()
		return n, nil
	}

	l.buf.Write(p)
	return n, nil
}

// markOverflow sets the overflow flag and fires the callback exactly once.
// Caller must hold l.mu.
func (l *Limiter) markOverflow() {
	l.overflowed = true
	if !l.fired && l.OnOverflow != nil {
		l.fired = true
		go l.OnOverflow()
	}
}

// Bytes returns the captured bytes, never more than Cap.
func (l *Limiter) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]byte, l.buf.Len())
	copy(out, l.buf.Bytes())
	return out
}

// Truncated reports whether the stream exceeded Cap at any point.
func (l *Limiter) Truncated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overflowed
}
