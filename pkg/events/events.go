// Package events publishes timetable and registration change notifications.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types published after a mutation commits.
const (
	TypeTimetableCreated       = "timetable.created"
	TypeTimetableStatusChanged = "timetable.status_changed"
	TypeTimetableDeleted       = "timetable.deleted"
	TypeSlotsMaterialized      = "timetable.materialized"
	TypeTimetableAllocated     = "timetable.allocated"
	TypeStudentRegistered      = "student.registered"
	TypeStudentSlotSelected    = "student.slot_selected"
	TypeStudentUnregistered    = "student.unregistered"
)

// Event is the JSON body sent to the exchange. The routing key is Type.
type Event struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	TimetableID string      `json:"timetable_id,omitempty"`
	StudentID   string      `json:"student_id,omitempty"`
	ActorID     string      `json:"actor_id,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}

// Encode marshals the event body.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
