package model

import "time"

type EventType string

const (
	EventTypeMeeting     EventType = "meeting"
	EventTypePractice    EventType = "practice"
	EventTypeOutreach    EventType = "outreach"
	EventTypeCompetition EventType = "competition"
	EventTypeOther       EventType = "other"
)

type Event struct {
	ID                string     `json:"id"`
	TeamID            string     `json:"team_id"`
	Title             string     `json:"title" validate:"required"`
	Description       *string    `json:"description,omitempty"`
	StartTime         time.Time  `json:"start_time" validate:"required"`
	EndTime           time.Time  `json:"end_time" validate:"required"`
	EventType         EventType  `json:"event_type" validate:"required"`
	Location          *string    `json:"location,omitempty"`
	CreatedBy         string     `json:"created_by"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "yes"
	RSVPNo    RSVPStatus = "no"
	RSVPMaybe RSVPStatus = "maybe"
)

// RSVP is a member's stated intent to attend an event. Unique per
// (event_id, user_id); a later RSVP overwrites the earlier one.
type RSVP struct {
	EventID string     `json:"event_id"`
	UserID  string     `json:"user_id"`
	Status  RSVPStatus `json:"status"`
}

// Attendance is a recorded fact of presence, distinct from RSVP intent.
type Attendance struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
