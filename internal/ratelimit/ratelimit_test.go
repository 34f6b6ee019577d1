package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, rate.Every(time.Second), 1)
}

func TestAllowOncePerWindow(t *testing.T) {
	gate := newGate(t)

	assert.True(t, gate.Allow("10.0.0.1"))
	assert.False(t, gate.Allow("10.0.0.1"))
	assert.False(t, gate.Allow("10.0.0.1"))
}

func TestAllowPerClient(t *testing.T) {
	gate := newGate(t)

	assert.True(t, gate.Allow("10.0.0.1"))
	assert.True(t, gate.Allow("10.0.0.2"))
	assert.False(t, gate.Allow("10.0.0.1"))
	assert.False(t, gate.Allow("10.0.0.2"))
}

func TestAllowRefills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	gate := New(ctx, rate.Every(10*time.Millisecond), 1)

	assert.True(t, gate.Allow("10.0.0.1"))
	assert.False(t, gate.Allow("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, gate.Allow("10.0.0.1"))
}

func TestAllowConcurrentBurst(t *testing.T) {
	gate := newGate(t)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.Allow("10.0.0.1") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, admitted.Load(), "a concurrent burst from one client admits exactly one request")
}
