package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the draft is written out while the user is
// editing.
const DefaultInterval = time.Second * 2

// Task periodically runs a save function. It is owned by whoever starts
// it: Start launches the ticker and Stop tears it down deterministically,
// so no timers leak across runs.
type Task struct {
	interval time.Duration
	save     func(ctx context.Context) error

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewTask(interval time.Duration, save func(ctx context.Context) error) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{
		interval: interval,
		save:     save,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (t *Task) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		go t.run(ctx)
	})
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := t.save(ctx)
			if err != nil {
				slog.Warn("autosave failed", "err", err)
			}
		case <-t.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the task and waits for the last tick to finish. Safe to call
// more than once, and safe to call before Start.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
	select {
	case <-t.done:
	default:
		// never started, nothing to wait for
		t.startOnce.Do(func() {
			close(t.done)
		})
		<-t.done
	}
}
