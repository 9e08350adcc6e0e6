package dto

import (
	"time"

	"github.com/limtzeyng/HERizon/internal/model"
	"github.com/limtzeyng/HERizon/internal/service"
)

type SendEventRequest struct {
	Event    string  `json:"event" jsonschema:"required,description=Event identifier such as NAME_CALLED or URGENT"`
	Target   *string `json:"target,omitempty" jsonschema:"enum=ALL,enum=LEFT,enum=RIGHT,default=ALL,description=Queue to route the event to (case-insensitive)"`
	TaskText *string `json:"task_text,omitempty" jsonschema:"description=Task instruction. Required for TASK_ASSIGNED"`
}

type SendEventResponse struct {
	OK bool `json:"ok"`
	model.QueueSizes
	EventID string  `json:"event_id"`
	TaskID  *string `json:"task_id,omitempty"`
}

// PollResponse always carries every field; event fields are null when
// nothing was waiting.
type PollResponse struct {
	Event    *string `json:"event"`
	Target   *string `json:"target"`
	TaskText *string `json:"task_text"`
	TaskID   *string `json:"task_id"`
	EventID  *string `json:"event_id"`
	model.QueueSizes
}

type RecordResponseRequest struct {
	Code          *string `json:"code,omitempty" jsonschema:"description=Machine-readable response code. Code or label is required"`
	Label         *string `json:"label,omitempty" jsonschema:"description=Human-readable response. Code or label is required"`
	User          *string `json:"user,omitempty" jsonschema:"default=PHONE"`
	Role          *string `json:"role,omitempty" jsonschema:"default=UNASSIGNED"`
	CustomPattern *string `json:"custom_pattern,omitempty"`
}

type StatusResponse struct {
	LatestEvent    *string         `json:"latest_event"`
	LatestTarget   string          `json:"latest_target"`
	LatestTaskText *string         `json:"latest_task_text"`
	LatestEventID  *string         `json:"latest_event_id"`
	Responses      []string        `json:"responses"`
	Entries        []ResponseEntry `json:"response_entries"`
	model.QueueSizes
}

type ResponseEntry struct {
	Code          *string `json:"code"`
	Label         *string `json:"label"`
	User          string  `json:"user"`
	Role          string  `json:"role"`
	CustomPattern *string `json:"custom_pattern"`
	ReceivedAt    string  `json:"received_at"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (r SendEventRequest) ToParams() service.SubmitParams {
	return service.SubmitParams{
		Event:    r.Event,
		Target:   r.Target,
		TaskText: r.TaskText,
	}
}

func (r RecordResponseRequest) ToParams() service.ResponseParams {
	return service.ResponseParams{
		Code:          r.Code,
		Label:         r.Label,
		User:          r.User,
		Role:          r.Role,
		CustomPattern: r.CustomPattern,
	}
}

func ToSendEventResponse(res *service.SubmitResult) SendEventResponse {
	return SendEventResponse{
		OK:         true,
		QueueSizes: res.Sizes,
		EventID:    res.Packet.EventID,
		TaskID:     res.Packet.TaskID,
	}
}

func ToPollResponse(res service.PollResult) PollResponse {
	out := PollResponse{QueueSizes: res.Sizes}
	if p := res.Packet; p != nil {
		target := string(p.Target)
		out.Event = &p.Event
		out.Target = &target
		out.TaskText = p.TaskText
		out.TaskID = p.TaskID
		out.EventID = &p.EventID
	}
	return out
}

func ToStatusResponse(s service.Status) StatusResponse {
	out := StatusResponse{
		LatestEvent:    s.Latest.Event,
		LatestTarget:   string(s.Latest.Target),
		LatestTaskText: s.Latest.TaskText,
		LatestEventID:  s.Latest.EventID,
		Responses:      make([]string, 0, len(s.Responses)),
		Entries:        make([]ResponseEntry, 0, len(s.Responses)),
		QueueSizes:     s.Sizes,
	}
	for _, r := range s.Responses {
		out.Responses = append(out.Responses, r.Line())
		out.Entries = append(out.Entries, ResponseEntry{
			Code:          r.Code,
			Label:         r.Label,
			User:          r.User,
			Role:          r.Role,
			CustomPattern: r.CustomPattern,
			ReceivedAt:    r.ReceivedAt.Format(time.RFC3339),
		})
	}
	return out
}
