package repositories

import (
	"testing"

	"github.com/matchpoint-app/matchpoint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchWatcherDeliversUpdates(t *testing.T) {
	w := NewMatchWatcher()
	ch, cancel := w.Watch("m1")
	defer cancel()

	w.Notify(models.Match{ID: "m1", Team1Points: []int{5}})
	w.Notify(models.Match{ID: "other"})

	select {
	case m := <-ch:
		assert.Equal(t, "m1", m.ID)
		assert.Equal(t, []int{5}, m.Team1Points)
	default:
		t.Fatal("expected a buffered update")
	}
	select {
	case m := <-ch:
		t.Fatalf("unexpected update for %s", m.ID)
	default:
	}
}

func TestMatchWatcherCancelClosesChannel(t *testing.T) {
	w := NewMatchWatcher()
	ch, cancel := w.Watch("m1")

	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Notifying after cancellation must not panic on the closed channel.
	w.Notify(models.Match{ID: "m1"})
}

func TestMatchWatcherSkipsFullSubscriber(t *testing.T) {
	w := NewMatchWatcher()
	ch, cancel := w.Watch("m1")
	defer cancel()

	for i := 0; i < watchBuffer+4; i++ {
		w.Notify(models.Match{ID: "m1", Team1Points: []int{i}})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, watchBuffer, received)
}

func TestMatchWatcherMultipleSubscribers(t *testing.T) {
	w := NewMatchWatcher()
	ch1, cancel1 := w.Watch("m1")
	ch2, cancel2 := w.Watch("m1")
	defer cancel2()

	cancel1()
	w.Notify(models.Match{ID: "m1"})

	_, open := <-ch1
	require.False(t, open)
	select {
	case m := <-ch2:
		assert.Equal(t, "m1", m.ID)
	default:
		t.Fatal("surviving subscriber should still receive updates")
	}
}
