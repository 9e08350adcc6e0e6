package service

import (
	"sync"

	"github.com/limtzeyng/HERizon/internal/model"
	"github.com/limtzeyng/HERizon/internal/queue"
)

// ResponseLog keeps the most recent responses, newest first.
type ResponseLog struct {
	mu   sync.Mutex
	ring *queue.Ring[model.Response]
}

func NewResponseLog(capacity int) *ResponseLog {
	return &ResponseLog{ring: queue.NewRing[model.Response](capacity)}
}

// Record adds r as the newest entry, dropping the oldest when full.
func (l *ResponseLog) Record(r model.Response) (evicted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, evicted = l.ring.Push(r)
	return evicted
}

// Entries returns a copy of the log, newest first.
func (l *ResponseLog) Entries() []model.Response {
	l.mu.Lock()
	oldestFirst := l.ring.Slice()
	l.mu.Unlock()

	for i, j := 0, len(oldestFirst)-1; i < j; i, j = i+1, j-1 {
		oldestFirst[i], oldestFirst[j] = oldestFirst[j], oldestFirst[i]
	}
	return oldestFirst
}

func (l *ResponseLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Len()
}
