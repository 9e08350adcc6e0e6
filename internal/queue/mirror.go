package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/limtzeyng/HERizon/internal/model"
)

type RecordKind string

const (
	RecordKindPacket   RecordKind = "packet"
	RecordKindResponse RecordKind = "response"
)

// Mirror copies submitted packets and recorded responses to an external
// sink for observers. It is never read on the delivery path.
type Mirror interface {
	PublishPacket(ctx context.Context, p model.Packet) error
	PublishResponse(ctx context.Context, r model.Response) error
	Close() error
}

type redisMirror struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisMirror appends records to a capped redis stream.
func NewRedisMirror(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisMirror{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

func (m *redisMirror) PublishPacket(ctx context.Context, p model.Packet) error {
	if err := m.add(ctx, PacketValues(p)); err != nil {
		return fmt.Errorf("mirror packet: %w", err)
	}
	m.logger.DebugContext(ctx, "mirrored packet", "event_id", p.EventID, "stream", m.stream)
	return nil
}

func (m *redisMirror) PublishResponse(ctx context.Context, r model.Response) error {
	if err := m.add(ctx, ResponseValues(r)); err != nil {
		return fmt.Errorf("mirror response: %w", err)
	}
	m.logger.DebugContext(ctx, "mirrored response", "role", r.Role, "stream", m.stream)
	return nil
}

func (m *redisMirror) add(ctx context.Context, values map[string]any) error {
	args := &redis.XAddArgs{
		Stream: m.stream,
		Values: values,
	}
	if m.maxLen > 0 {
		args.MaxLen = m.maxLen
		args.Approx = true
	}
	return m.client.XAdd(ctx, args).Err()
}

func (m *redisMirror) Close() error {
	return m.client.Close()
}

// PacketValues flattens a packet into stream fields. Absent optional fields
// are omitted rather than written empty.
func PacketValues(p model.Packet) map[string]any {
	values := map[string]any{
		"kind":       string(RecordKindPacket),
		"event":      p.Event,
		"target":     string(p.Target),
		"event_id":   p.EventID,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.TaskText != nil {
		values["task_text"] = *p.TaskText
	}
	if p.TaskID != nil {
		values["task_id"] = *p.TaskID
	}
	return values
}

func ResponseValues(r model.Response) map[string]any {
	values := map[string]any{
		"kind":        string(RecordKindResponse),
		"user":        r.User,
		"role":        r.Role,
		"received_at": r.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.Code != nil {
		values["code"] = *r.Code
	}
	if r.Label != nil {
		values["label"] = *r.Label
	}
	if r.CustomPattern != nil {
		values["custom_pattern"] = *r.CustomPattern
	}
	return values
}
