package model

import "time"

// CalendarKind distinguishes the source of a calendar item.
type CalendarKind string

const (
	KindEvent       CalendarKind = "event"
	KindTask        CalendarKind = "task"
	KindCompetition CalendarKind = "competition"
)

// CalendarItem is the derived, render-only union of events, due-dated tasks
// and external competition events. Task-derived items use the due date for
// both start and end (a same-instant item); start <= end is not guaranteed
// for them.
type CalendarItem struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Start            time.Time    `json:"start"`
	End              time.Time    `json:"end"`
	Kind             CalendarKind `json:"kind"`
	SourceCategory   string       `json:"source_category,omitempty"`
	OwnerID          string       `json:"owner_id,omitempty"`
	AssignedTo       string       `json:"assigned_to,omitempty"`
	Priority         string       `json:"priority,omitempty"`
	Location         string       `json:"location,omitempty"`
	ParticipantCount int          `json:"participant_count"`
}

// CompetitionEvent is a read-only record sourced from a FIRST schedule API,
// not owned by any team.
type CompetitionEvent struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	DistrictCode string     `json:"district_code,omitempty"`
	Address      string     `json:"address,omitempty"`
	Website      string     `json:"website,omitempty"`
	DateStart    *time.Time `json:"date_start,omitempty"`
	DateEnd      *time.Time `json:"date_end,omitempty"`
}
