package repositories

import (
	"sync"

	"github.com/matchpoint-app/matchpoint/models"
)

// watchBuffer bounds each subscriber channel; a slow consumer loses
// intermediate states, never the subscription.
const watchBuffer = 8

// MatchWatcher is the in-process change stream behind the reactive match
// contract: Watch hands out a channel that receives every accepted write to
// the given match until the returned cancel func is called. Notification is
// best-effort and non-blocking.
type MatchWatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan models.Match
}

func NewMatchWatcher() *MatchWatcher {
	return &MatchWatcher{subs: make(map[string]map[int]chan models.Match)}
}

// Watch subscribes to a match's updates. The cancel func is idempotent and
// closes the channel.
func (w *MatchWatcher) Watch(matchID string) (<-chan models.Match, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subs[matchID]; !ok {
		w.subs[matchID] = make(map[int]chan models.Match)
	}
	id := w.nextID
	w.nextID++
	ch := make(chan models.Match, watchBuffer)
	w.subs[matchID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if subs, ok := w.subs[matchID]; ok {
				if sub, okSub := subs[id]; okSub {
					delete(subs, id)
					close(sub)
					if len(subs) == 0 {
						delete(w.subs, matchID)
					}
				}
			}
		})
	}
	return ch, cancel
}

// Notify pushes a confirmed match state to all subscribers. Full subscriber
// buffers are skipped; the next notification carries a fresher state anyway.
func (w *MatchWatcher) Notify(m models.Match) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, ch := range w.subs[m.ID] {
		select {
		case ch <- m:
		default:
		}
	}
}
