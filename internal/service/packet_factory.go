package service

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/limtzeyng/HERizon/common/id"
	"github.com/limtzeyng/HERizon/internal/model"
)

// PacketFactory builds packets. It has no side effects beyond advancing its
// task counter; callers decide where the packet goes.
type PacketFactory struct {
	taskSeq    atomic.Int64
	newEventID func() string
	now        func() time.Time
}

// NewPacketFactory uses the snowflake node for event IDs, so id.Init must
// have been called.
func NewPacketFactory() *PacketFactory {
	return &PacketFactory{
		newEventID: id.NewString,
		now:        time.Now,
	}
}

// Create builds a packet for event routed to target (ALL when empty).
// taskText is trimmed and dropped when blank. A task ID is drawn only for
// TASK_ASSIGNED packets that carry text.
func (f *PacketFactory) Create(event string, target model.Target, taskText *string) model.Packet {
	if target == "" {
		target = model.TargetAll
	}

	p := model.Packet{
		Event:     event,
		Target:    target,
		TaskText:  trimmed(taskText),
		EventID:   f.newEventID(),
		CreatedAt: f.now(),
	}
	if p.Event == model.EventTaskAssigned && p.TaskText != nil {
		taskID := "task-" + strconv.FormatInt(f.taskSeq.Add(1), 10)
		p.TaskID = &taskID
	}
	return p
}

// trimmed returns nil for nil or whitespace-only input.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
