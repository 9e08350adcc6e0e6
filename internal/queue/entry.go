package queue

import "github.com/limtzeyng/HERizon/internal/model"

// Entry is what a queue holds: either a constructed packet or a bare event
// name left behind by servers that queued plain strings. Readers normalize
// legacy entries into packets before handing them out.
type Entry struct {
	packet *model.Packet
	legacy string
}

func PacketEntry(p model.Packet) Entry {
	return Entry{packet: &p}
}

func LegacyEntry(event string) Entry {
	return Entry{legacy: event}
}

// Packet returns the packet, or false for a legacy entry.
func (e Entry) Packet() (model.Packet, bool) {
	if e.packet == nil {
		return model.Packet{}, false
	}
	return *e.packet, true
}

// Legacy returns the raw event name of a legacy entry.
func (e Entry) Legacy() string {
	return e.legacy
}
