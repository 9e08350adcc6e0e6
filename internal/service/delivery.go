package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/limtzeyng/HERizon/common/logger"
	"github.com/limtzeyng/HERizon/internal/model"
	"github.com/limtzeyng/HERizon/internal/queue"
)

type SubmitParams struct {
	Event    string
	Target   *string // nil means ALL
	TaskText *string
}

type SubmitResult struct {
	Packet model.Packet
	Sizes  model.QueueSizes
}

// PollResult carries the delivered packet, or a nil Packet when nothing was
// waiting for the role.
type PollResult struct {
	Packet *model.Packet
	Sizes  model.QueueSizes
}

type ResponseParams struct {
	Code          *string
	Label         *string
	User          *string
	Role          *string
	CustomPattern *string
}

type Status struct {
	Latest    LatestState
	Sizes     model.QueueSizes
	Responses []model.Response // newest first
}

type DeliveryService interface {
	// Submit validates and queues one event.
	Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error)
	// Poll pops the next packet for role. It never blocks and never fails.
	Poll(ctx context.Context, role string) PollResult
	RecordResponse(ctx context.Context, params ResponseParams) (*model.Response, error)
	// Status is a read-only view for dashboards. It does not consume packets.
	Status(ctx context.Context) Status
}

type DeliveryConfig struct {
	QueueCapacity       int
	ResponseLogCapacity int
	Mirror              queue.Mirror // optional
	Queues              *queue.Set   // optional, built from QueueCapacity when nil
	Factory             *PacketFactory
	Logger              *slog.Logger
}

type deliveryService struct {
	queues    *queue.Set
	factory   *PacketFactory
	latest    *latestRegister
	responses *ResponseLog
	mirror    queue.Mirror
	logger    *slog.Logger
	now       func() time.Time
}

func NewDeliveryService(cfg DeliveryConfig) DeliveryService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Queues == nil {
		cfg.Queues = queue.NewSet(cfg.QueueCapacity)
	}
	if cfg.Factory == nil {
		cfg.Factory = NewPacketFactory()
	}
	return &deliveryService{
		queues:    cfg.Queues,
		factory:   cfg.Factory,
		latest:    newLatestRegister(),
		responses: NewResponseLog(cfg.ResponseLogCapacity),
		mirror:    cfg.Mirror,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

func (s *deliveryService) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "herizon.service.delivery"})
	sc := logger.StartSpan(ctx, "delivery.submit")
	defer sc.End()
	ctx = sc.Context()

	event := strings.TrimSpace(params.Event)
	if event == "" {
		return nil, fmt.Errorf("%w: missing event", ErrInvalidInput)
	}

	target := model.TargetAll
	if params.Target != nil {
		t, ok := model.ParseTarget(*params.Target)
		if !ok {
			return nil, fmt.Errorf("%w: invalid target %q, use ALL/LEFT/RIGHT", ErrInvalidInput, *params.Target)
		}
		target = t
	}

	if event == model.EventTaskAssigned && trimmed(params.TaskText) == nil {
		return nil, fmt.Errorf("%w: task_text is required for %s", ErrInvalidInput, model.EventTaskAssigned)
	}

	packet := s.factory.Create(event, target, params.TaskText)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Event:   &packet.Event,
		Target:  logger.Ptr(string(packet.Target)),
		EventID: &packet.EventID,
	})
	sc.Span().SetAttributes(
		attribute.String("herizon.event", packet.Event),
		attribute.String("herizon.target", string(packet.Target)),
	)

	size, dropped, evicted := s.queues.For(target).Push(queue.PacketEntry(packet))
	if evicted {
		droppedEvent := dropped.Legacy()
		if p, ok := dropped.Packet(); ok {
			droppedEvent = p.Event + " (" + p.EventID + ")"
		}
		s.logger.WarnContext(ctx, "queue full, dropped oldest packet", "dropped", droppedEvent, "queue_size", size)
	}

	s.latest.set(packet)
	sizes := s.queues.Sizes().With(target, size)

	if packet.HasTask() {
		s.logger.InfoContext(ctx, "event queued", "task_id", *packet.TaskID, "task_text", logger.Truncate(*packet.TaskText, 80), "queue_size", size)
	} else {
		s.logger.InfoContext(ctx, "event queued", "queue_size", size)
	}

	if s.mirror != nil {
		if err := s.mirror.PublishPacket(ctx, packet); err != nil {
			sc.RecordError(err)
			s.logger.WarnContext(ctx, "failed to mirror packet", "error", err)
		}
	}

	return &SubmitResult{Packet: packet, Sizes: sizes}, nil
}

func (s *deliveryService) Poll(ctx context.Context, role string) PollResult {
	target, _ := model.ParseTarget(role)
	if target == "" {
		target = model.TargetAll
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Role:      logger.Ptr(string(target)),
		Component: "herizon.service.delivery",
	})
	sc := logger.StartSpan(ctx, "delivery.poll")
	defer sc.End()
	ctx = sc.Context()

	// Dedicated queue strictly before broadcast. Roles without a queue fall
	// through to broadcast only.
	candidates := []*queue.Queue{s.queues.Broadcast()}
	if q := s.queues.Role(target); q != nil {
		candidates = []*queue.Queue{q, s.queues.Broadcast()}
	}

	for _, q := range candidates {
		entry, size, ok := q.Pop()
		if !ok {
			continue
		}
		packet := s.normalize(ctx, entry, q.Target())
		s.logger.DebugContext(ctx, "packet delivered", "event", packet.Event, "event_id", packet.EventID, "queue", string(q.Target()))
		return PollResult{
			Packet: &packet,
			Sizes:  s.queues.Sizes().With(q.Target(), size),
		}
	}

	return PollResult{Sizes: s.queues.Sizes()}
}

// normalize turns a legacy bare-string entry into a packet routed to the
// queue it was found in.
func (s *deliveryService) normalize(ctx context.Context, e queue.Entry, from model.Target) model.Packet {
	if p, ok := e.Packet(); ok {
		return p
	}
	p := s.factory.Create(e.Legacy(), from, nil)
	s.logger.InfoContext(ctx, "normalized legacy queue entry", "event", p.Event, "event_id", p.EventID)
	return p
}

func (s *deliveryService) RecordResponse(ctx context.Context, params ResponseParams) (*model.Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "herizon.service.delivery"})

	code, label := trimmed(params.Code), trimmed(params.Label)
	if code == nil && label == nil {
		return nil, fmt.Errorf("%w: missing code/label", ErrInvalidInput)
	}

	resp := model.Response{
		Code:          code,
		Label:         label,
		User:          model.DefaultResponseUser,
		Role:          model.DefaultResponseRole,
		CustomPattern: trimmed(params.CustomPattern),
		ReceivedAt:    s.now(),
	}
	if user := trimmed(params.User); user != nil {
		resp.User = *user
	}
	if role := trimmed(params.Role); role != nil {
		resp.Role = strings.ToUpper(*role)
	}

	if evicted := s.responses.Record(resp); evicted {
		s.logger.DebugContext(ctx, "response log full, dropped oldest entry")
	}
	s.logger.InfoContext(ctx, "response recorded", "role", resp.Role, "user", resp.User, "line", resp.Line())

	if s.mirror != nil {
		if err := s.mirror.PublishResponse(ctx, resp); err != nil {
			s.logger.WarnContext(ctx, "failed to mirror response", "error", err)
		}
	}

	return &resp, nil
}

func (s *deliveryService) Status(_ context.Context) Status {
	return Status{
		Latest:    s.latest.get(),
		Sizes:     s.queues.Sizes(),
		Responses: s.responses.Entries(),
	}
}
