package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultResponseUser = "PHONE"
	DefaultResponseRole = "UNASSIGNED"
)

// Response is a free-form reply posted by a receiver.
type Response struct {
	ReceivedAt    time.Time `json:"received_at"`
	Code          *string   `json:"code,omitempty"`
	Label         *string   `json:"label,omitempty"`
	CustomPattern *string   `json:"custom_pattern,omitempty"`
	User          string    `json:"user"`
	Role          string    `json:"role"`
}

// Line renders the response the way the dashboard log shows it:
//
//	[LEFT] [Phone user] Acknowledge / Yes (YES_SINGLE_TAP) @ 14:03:12
func (r Response) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s (%s)", r.Role, r.User, orDash(r.Label), orDash(r.Code))
	if r.CustomPattern != nil {
		fmt.Fprintf(&b, " {%s}", *r.CustomPattern)
	}
	fmt.Fprintf(&b, " @ %s", r.ReceivedAt.Format(time.TimeOnly))
	return b.String()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
