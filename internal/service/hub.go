package service

import (
	"sync"

	"clipcap/internal/types"
)

// Hub fans progress and log events out to per-task subscribers. Events are
// dropped, not blocked on, when a subscriber is slow.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan types.ProgressEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan types.ProgressEvent)}
}

// Subscribe registers a watcher for one task's progress stream. The returned
// cancel func removes the subscription and closes the channel.
func (h *Hub) Subscribe(taskId string) (<-chan types.ProgressEvent, func()) {
	ch := make(chan types.ProgressEvent, 16)
	h.mu.Lock()
	h.subs[taskId] = append(h.subs[taskId], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[taskId]
		for i, c := range chans {
			if c == ch {
				h.subs[taskId] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
		if len(h.subs[taskId]) == 0 {
			delete(h.subs, taskId)
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(ev types.ProgressEvent) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.TaskId] {
		select {
		case ch <- ev:
		default:
		}
	}
}
