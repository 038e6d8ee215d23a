package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribers(n *Notifier) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, subscribers(n))

	n.Unsubscribe(ch)
	assert.Equal(t, 0, subscribers(n))
	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { n.Unsubscribe(ch) })
}

func TestNotifier_PingReachesEverySubscriber(t *testing.T) {
	n := NewNotifier()
	viewer := n.Subscribe()
	other := n.Subscribe()
	defer n.Unsubscribe(viewer)
	defer n.Unsubscribe(other)

	n.Ping()

	for name, ch := range map[string]chan struct{}{"viewer": viewer, "other": other} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("%s did not get a repaint", name)
		}
	}
}

func TestNotifier_PingsCoalesce(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// A finished task and a file change arrive before the viewer redraws.
	done := make(chan struct{})
	go func() {
		n.Ping()
		n.Ping()
		for range 8 {
			n.Ping()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Ping blocked on a subscriber with a queued repaint")
	}
	assert.Len(t, ch, 1)

	<-ch
	n.Ping()
	assert.Len(t, ch, 1, "a drained subscriber gets the next repaint")
}

func TestNotifier_Concurrent(t *testing.T) {
	n := NewNotifier()
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Ping()
			n.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, subscribers(n))
}
