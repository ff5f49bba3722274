package autosave

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskSavesPeriodically(t *testing.T) {
	var count atomic.Int64
	task := NewTask(time.Millisecond*10, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})

	task.Start(context.Background())
	require.Eventually(t, func() bool {
		return count.Load() >= 2
	}, time.Second, time.Millisecond*5)

	task.Stop()
	frozen := count.Load()
	time.Sleep(time.Millisecond * 50)
	require.Equal(t, frozen, count.Load())
}

func TestTaskStopBeforeStart(t *testing.T) {
	task := NewTask(time.Millisecond*10, func(ctx context.Context) error {
		t.Error("save should never run")
		return nil
	})
	task.Stop()
	task.Start(context.Background())
	time.Sleep(time.Millisecond * 50)
}

func TestTaskStopsOnContextCancel(t *testing.T) {
	var count atomic.Int64
	task := NewTask(time.Millisecond*10, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	task.Start(ctx)
	require.Eventually(t, func() bool {
		return count.Load() >= 1
	}, time.Second, time.Millisecond*5)

	cancel()
	time.Sleep(time.Millisecond * 30)
	frozen := count.Load()
	time.Sleep(time.Millisecond * 50)
	require.Equal(t, frozen, count.Load())
}
