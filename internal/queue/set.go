package queue

import (
	"sync"

	"github.com/limtzeyng/HERizon/internal/model"
)

// Queue is a bounded FIFO guarded by its own lock.
type Queue struct {
	mu     sync.Mutex
	ring   *Ring[Entry]
	target model.Target
}

func newQueue(target model.Target, capacity int) *Queue {
	return &Queue{ring: NewRing[Entry](capacity), target: target}
}

// Target is the name of this queue.
func (q *Queue) Target() model.Target {
	return q.target
}

// Push appends e and returns the length after insertion, observed under the
// same lock. A full queue drops its oldest entry, which is returned.
func (q *Queue) Push(e Entry) (size int, dropped Entry, evicted bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped, evicted = q.ring.Push(e)
	return q.ring.Len(), dropped, evicted
}

// Pop removes the head entry. The check and removal happen under one lock so
// no entry is handed to two callers.
func (q *Queue) Pop() (Entry, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.ring.Pop()
	return e, q.ring.Len(), ok
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Len()
}

// Set is the broadcast queue plus one queue per role. Queues lock
// independently; no ordering holds across them.
type Set struct {
	broadcast *Queue
	roles     map[model.Target]*Queue
}

func NewSet(capacity int) *Set {
	s := &Set{
		broadcast: newQueue(model.TargetAll, capacity),
		roles:     make(map[model.Target]*Queue, len(model.Roles)),
	}
	for _, role := range model.Roles {
		s.roles[role] = newQueue(role, capacity)
	}
	return s
}

// Broadcast returns the ALL queue.
func (s *Set) Broadcast() *Queue {
	return s.broadcast
}

// Role returns the dedicated queue for role, or nil if it has none.
func (s *Set) Role(role model.Target) *Queue {
	return s.roles[role]
}

// For returns the queue a packet with target t is stored in.
func (s *Set) For(t model.Target) *Queue {
	if q := s.roles[t]; q != nil {
		return q
	}
	return s.broadcast
}

// Sizes reads each queue length. Each read is atomic for its queue; the
// three reads together are not a snapshot.
func (s *Set) Sizes() model.QueueSizes {
	return model.QueueSizes{
		All:   s.broadcast.Len(),
		Left:  s.roles[model.TargetLeft].Len(),
		Right: s.roles[model.TargetRight].Len(),
	}
}

// PushLegacy stores a bare event name, as older servers did.
func (s *Set) PushLegacy(t model.Target, event string) int {
	size, _, _ := s.For(t).Push(LegacyEntry(event))
	return size
}
