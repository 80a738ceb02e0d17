package fstree

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorOrder(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	var got []int
	for i := 0; i < 100; i++ {
		require.True(t, c.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, c.Do(context.Background(), func() {}))
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestCoordinatorPostFromInside(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	var order []string
	require.NoError(t, c.Do(context.Background(), func() {
		c.Post(func() { order = append(order, "inner") })
		order = append(order, "outer")
	}))
	require.NoError(t, c.Do(context.Background(), func() {}))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestCoordinatorClose(t *testing.T) {
	c := NewCoordinator()
	c.Close()
	c.Close()
	assert.False(t, c.Post(func() {}))
	assert.ErrorIs(t, c.Do(context.Background(), func() {}), ErrClosed)
}

func TestCoordinatorDoContext(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	block := make(chan struct{})
	c.Post(func() { <-block })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Do(ctx, func() {}), context.DeadlineExceeded)
	close(block)
}

func TestDebouncerCoalesces(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	var fired atomic.Int32
	var d *Debouncer
	require.NoError(t, c.Do(context.Background(), func() {
		d = c.NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	}))

	// 窗口内的多次调度只执行一次
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Do(context.Background(), d.Schedule))
		time.Sleep(5 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())

	require.NoError(t, c.Do(context.Background(), d.Schedule))
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerStop(t *testing.T) {
	c := NewCoordinator()
	defer c.Close()

	var fired atomic.Int32
	var d *Debouncer
	require.NoError(t, c.Do(context.Background(), func() {
		d = c.NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })
		d.Schedule()
		assert.True(t, d.Pending())
		d.Stop()
		assert.False(t, d.Pending())
	}))
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, c.Do(context.Background(), func() {}))
	assert.Zero(t, fired.Load())
}
