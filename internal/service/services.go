package service

import (
	"log/slog"

	"github.com/limtzeyng/HERizon/core/config"
	"github.com/limtzeyng/HERizon/internal/queue"
)

type ServicesConfig struct {
	Delivery config.DeliveryConfig
	Mirror   queue.Mirror
	Logger   *slog.Logger
}

// Services owns the process-wide service instances. The delivery engine is
// stateful, so it is built once and shared by every handler.
type Services struct {
	delivery DeliveryService
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		delivery: NewDeliveryService(DeliveryConfig{
			QueueCapacity:       cfg.Delivery.QueueCapacity,
			ResponseLogCapacity: cfg.Delivery.ResponseLogCapacity,
			Mirror:              cfg.Mirror,
			Logger:              cfg.Logger,
		}),
	}
}

func (s *Services) Delivery() DeliveryService {
	return s.delivery
}
