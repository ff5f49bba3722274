package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// DismissAfter is how long a banner stays in the active set.
const DismissAfter = time.Second * 3

type Banner struct {
	Message string
	Kind    Kind
	At      time.Time
}

// Notifier presents transient, non-blocking feedback. Every call writes a
// styled line immediately and tracks an independent banner that removes
// itself after the dismiss delay; banners stack rather than replace each
// other and carry no ordering guarantee beyond creation order.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	ttl    time.Duration
	active []Banner
}

type Options struct {
	Out io.Writer
	// Ttl defaults to DismissAfter when zero.
	Ttl time.Duration
}

func New(opts Options) *Notifier {
	ttl := opts.Ttl
	if ttl == 0 {
		ttl = DismissAfter
	}
	return &Notifier{out: opts.Out, ttl: ttl}
}

func (n *Notifier) Notify(message string, kind Kind) {
	banner := Banner{Message: message, Kind: kind, At: time.Now()}

	n.mu.Lock()
	n.active = append(n.active, banner)
	n.mu.Unlock()

	if n.out != nil {
		switch kind {
		case Error:
			fmt.Fprintln(n.out, text.FgRed.Sprintf("✗ %s", message))
		default:
			fmt.Fprintln(n.out, text.FgGreen.Sprintf("✓ %s", message))
		}
	}

	time.AfterFunc(n.ttl, func() {
		n.dismiss(banner)
	})
}

func (n *Notifier) dismiss(banner Banner) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, b := range n.active {
		if b == banner {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return
		}
	}
}

// Active returns the banners that have not auto-dismissed yet, in
// creation order.
func (n *Notifier) Active() []Banner {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Banner, len(n.active))
	copy(out, n.active)
	return out
}
