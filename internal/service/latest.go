package service

import (
	"sync"

	"github.com/limtzeyng/HERizon/internal/model"
)

// LatestState is the most recently submitted event. Consumption never clears it.
type LatestState struct {
	Event    *string
	TaskText *string
	EventID  *string
	Target   model.Target
}

type latestRegister struct {
	mu    sync.RWMutex
	state LatestState
}

func newLatestRegister() *latestRegister {
	return &latestRegister{state: LatestState{Target: model.TargetAll}}
}

func (r *latestRegister) set(p model.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = LatestState{
		Event:    &p.Event,
		TaskText: p.TaskText,
		EventID:  &p.EventID,
		Target:   p.Target,
	}
}

func (r *latestRegister) get() LatestState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}
