package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limtzeyng/HERizon/internal/http/dto"
	"github.com/limtzeyng/HERizon/internal/service"
)

type DeliveryHandler struct {
	service service.DeliveryService
}

func NewDeliveryHandler(service service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// Send queues an event from the dashboard.
func (h *DeliveryHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid send request", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
		return
	}

	res, err := h.service.Submit(ctx, req.ToParams())
	if err != nil {
		h.fail(c, err, "failed to send event")
		return
	}

	c.JSON(http.StatusOK, dto.ToSendEventResponse(res))
}

// Poll hands the next packet to a receiver. An empty queue is a 200 with
// null event fields.
func (h *DeliveryHandler) Poll(c *gin.Context) {
	role := c.DefaultQuery("role", "ALL")
	res := h.service.Poll(c.Request.Context(), role)
	c.JSON(http.StatusOK, dto.ToPollResponse(res))
}

// Response records a reply posted by a receiver.
func (h *DeliveryHandler) Response(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid response request", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if _, err := h.service.RecordResponse(ctx, req.ToParams()); err != nil {
		h.fail(c, err, "failed to record response")
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *DeliveryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToStatusResponse(h.service.Status(c.Request.Context())))
}

func (h *DeliveryHandler) fail(c *gin.Context, err error, msg string) {
	ctx := c.Request.Context()
	if errors.Is(err, service.ErrInvalidInput) {
		slog.InfoContext(ctx, "rejected request", "reason", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	slog.ErrorContext(ctx, msg, "error", err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msg})
}
