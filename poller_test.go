package ihkb

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUpdater struct {
	calls atomic.Int32
	err   error
}

func (c *countingUpdater) Update(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestPoller_Poll(t *testing.T) {
	ok := &countingUpdater{}
	broken := &countingUpdater{err: errors.New("unreachable")}
	p := NewPoller(time.Minute, broken, ok)

	p.Poll(context.Background())
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), broken.calls.Load())
}

func TestPoller_Run(t *testing.T) {
	u := &countingUpdater{}
	p := NewPoller(10*time.Millisecond, u)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return u.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_SetInterval(t *testing.T) {
	u := &countingUpdater{}
	p := NewPoller(0, u)
	assert.Equal(t, time.Duration(0), p.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	// paused
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), u.calls.Load())

	p.SetInterval(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, p.Interval())
	assert.Eventually(t, func() bool { return u.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	p.SetInterval(0)
	time.Sleep(30 * time.Millisecond)
	paused := u.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, paused, u.calls.Load())
}
