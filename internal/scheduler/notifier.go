package scheduler

import "sync"

// Notifier tells the viewer to redraw. The scheduler pings it when a task
// finishes and the file watcher pings it when a watched file changes; on a
// ping the viewer ticks the app, which polls the scheduler and drains the
// watcher. Pings carry no payload and coalesce: a subscriber holds at most one
// unread ping.
type Notifier struct {
	mu   sync.RWMutex
	subs map[chan struct{}]struct{}
}

// NewNotifier creates a Notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a repaint channel. Pair it with Unsubscribe.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe closes ch. Unknown or already closed channels are ignored.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	_, ok := n.subs[ch]
	delete(n.subs, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Ping requests a repaint from every subscriber. It never blocks.
func (n *Notifier) Ping() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a repaint is already queued
		}
	}
}
