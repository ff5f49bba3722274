package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifyStacksAndDismisses(t *testing.T) {
	var out strings.Builder
	notifier := New(Options{Out: &out, Ttl: time.Millisecond * 100})

	notifier.Notify("search complete", Success)
	notifier.Notify("export failed", Error)

	active := notifier.Active()
	require.Len(t, active, 2)
	require.Equal(t, "search complete", active[0].Message)
	require.Equal(t, Success, active[0].Kind)
	require.Equal(t, "export failed", active[1].Message)
	require.Equal(t, Error, active[1].Kind)

	require.Contains(t, out.String(), "search complete")
	require.Contains(t, out.String(), "export failed")

	require.Eventually(t, func() bool {
		return len(notifier.Active()) == 0
	}, time.Second, time.Millisecond*10)
}

func TestNotifyDoesNotBlock(t *testing.T) {
	notifier := New(Options{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			notifier.Notify("message", Success)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked")
	}
}
