package model

import (
	"strings"
	"time"
)

// Target names the queue a packet is routed to.
type Target string

const (
	TargetAll   Target = "ALL"
	TargetLeft  Target = "LEFT"
	TargetRight Target = "RIGHT"
)

// Roles lists the targets that own a dedicated queue.
var Roles = []Target{TargetLeft, TargetRight}

// ParseTarget case-normalizes s and reports whether it names a known target.
func ParseTarget(s string) (Target, bool) {
	t := Target(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TargetAll, TargetLeft, TargetRight:
		return t, true
	}
	return t, false
}

// IsRole reports whether t has a dedicated queue.
func (t Target) IsRole() bool {
	return t == TargetLeft || t == TargetRight
}

const (
	EventNameCalled        = "NAME_CALLED"
	EventTaskAssigned      = "TASK_ASSIGNED"
	EventUrgent            = "URGENT"
	EventDirectionalSignal = "DIRECTIONAL_SIGNAL"
)

// Packet is one event routed to exactly one queue. It is never mutated after
// construction; copies are handed out by value.
type Packet struct {
	CreatedAt time.Time `json:"created_at"`
	TaskText  *string   `json:"task_text"`
	TaskID    *string   `json:"task_id"`
	Event     string    `json:"event"`
	Target    Target    `json:"target"`
	EventID   string    `json:"event_id"`
}

// HasTask reports whether the packet carries a task assignment.
func (p Packet) HasTask() bool {
	return p.TaskID != nil
}

// QueueSizes reports the length of each queue.
type QueueSizes struct {
	All   int `json:"queue_size"`
	Left  int `json:"left_queue_size"`
	Right int `json:"right_queue_size"`
}

// With returns a copy of s with the size of target set to n.
func (s QueueSizes) With(target Target, n int) QueueSizes {
	switch target {
	case TargetLeft:
		s.Left = n
	case TargetRight:
		s.Right = n
	default:
		s.All = n
	}
	return s
}
