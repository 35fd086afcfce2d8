package stream_test

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cchooks/internal/stream"
)

func TestLimiterPassesThroughUnderCap(t *testing.T) {
	l := stream.NewLimiter(1024, nil)
	n, err := l.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(l.Bytes()))
	assert.False(t, l.Truncated())
}

func TestLimiterCapsAtExactBoundary(t *testing.T) {
	l := stream.NewLimiter(5, nil)
	l.Write([]byte("hello"))
	assert.False(t, l.Truncated())
	assert.Equal(t, "hello", string(l.Bytes()))
}

func TestLimiterDropsBytesPastCap(t *testing.T) {
	l := stream.NewLimiter(5, nil)
	l.Write([]byte("hello world"))
	assert.True(t, l.Truncated())
	assert.Equal(t, "hello", string(l.Bytes()))
	assert.LessOrEqual(t, len(l.Bytes()), 5)
}

func TestLimiterNeverExceedsCapAcrossMultipleWrites(t *testing.T) {
	l := stream.NewLimiter(10, nil)
	for i := 0; i < 5; i++ {
		l.Write([]byte(strings.Repeat("a", 4)))
	}
	assert.LessOrEqual(t, len(l.Bytes()), 10)
	assert.True(t, l.Truncated())
}

func TestLimiterFiresOverflowExactlyOnce(t *testing.T) {
	var fired int32
	l := stream.NewLimiter(5, func() { atomic.AddInt32(&fired, 1) })

	l.Write([]byte("hello world"))
	l.Write([]byte("more"))
	l.Write([]byte("even more"))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, time.Second, time.Millisecond)
}
