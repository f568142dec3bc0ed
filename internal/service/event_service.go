package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

// workHoursCategory is the finance category used when event creation logs
// volunteer work hours.
const workHoursCategory = "Work Hours"

type EventService struct {
	tx db.Transactor

	events   repository.EventRepository
	finances repository.FinanceRepository
}

func NewEventService(tx db.Transactor) *EventService {
	return &EventService{tx: tx}
}

type CreateEventInput struct {
	Title             string
	Description       *string
	StartTime         time.Time
	EndTime           time.Time
	EventType         model.EventType
	Location          *string
	IsRecurring       bool
	RecurrencePattern *string
	// WorkHours, when positive, additionally logs a finance income row so
	// volunteer hours show up in the team's books.
	WorkHours float64
}

func (s *EventService) CreateEvent(ctx context.Context, id auth.Identity, in CreateEventInput) (*model.Event, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "join a team to create events")
	}

	event := &repository.Event{
		ID:                uuid.NewString(),
		TeamID:            id.TeamID,
		Title:             in.Title,
		Description:       in.Description,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		EventType:         in.EventType,
		Location:          in.Location,
		CreatedBy:         id.UserID,
		IsRecurring:       in.IsRecurring,
		RecurrencePattern: in.RecurrencePattern,
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, event); err != nil {
			l.Error("failed to create event", zap.String("title", in.Title), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create event")
		}

		if in.WorkHours > 0 {
			record := &repository.FinanceRecord{
				ID:          uuid.NewString(),
				TeamID:      id.TeamID,
				Type:        model.FinanceIncome,
				Amount:      in.WorkHours,
				Description: "Work hours: " + in.Title,
				Category:    ptr(workHoursCategory),
				Date:        in.StartTime,
				CreatedBy:   id.UserID,
			}
			if err := s.finances.Create(txCtx, record); err != nil {
				l.Error("failed to log work hours", zap.String("event_id", event.ID), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to log work hours")
			}
		}

		return nil
	})

	var res *Error
	if errors.As(err, &res) {
		return nil, res
	}
	if err != nil {
		l.Error("create event transaction failed", zap.String("title", in.Title), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create event")
	}

	return toModelEvent(event), nil
}

func (s *EventService) ListEvents(ctx context.Context, id auth.Identity) ([]*model.Event, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	repoEvents, err := s.events.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list events")
	}

	events := make([]*model.Event, 0, len(repoEvents))
	for _, ev := range repoEvents {
		events = append(events, toModelEvent(ev))
	}
	return events, nil
}

// RSVP records intent to attend. Upsert semantics: repeating the same status
// is a no-op, a different status overwrites.
func (s *EventService) RSVP(ctx context.Context, id auth.Identity, eventID string, status model.RSVPStatus) (*model.RSVP, *Error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load event")
	}
	if event.TeamID != id.TeamID {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}

	rsvp := &repository.RSVP{
		EventID: eventID,
		UserID:  id.UserID,
		Status:  status,
	}
	if err = s.events.UpsertRSVP(ctx, rsvp); err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to store RSVP")
	}

	return &model.RSVP{EventID: rsvp.EventID, UserID: rsvp.UserID, Status: rsvp.Status}, nil
}

// CheckIn records the fact of presence, independent of any RSVP. Idempotent
// per (event, user): a repeated check-in returns the original record.
func (s *EventService) CheckIn(ctx context.Context, id auth.Identity, eventID string) (*model.Attendance, *Error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load event")
	}
	if event.TeamID != id.TeamID {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}

	stored, err := s.events.InsertAttendance(ctx, &repository.Attendance{
		EventID:     eventID,
		UserID:      id.UserID,
		Status:      "present",
		CheckedInAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to record attendance")
	}

	return &model.Attendance{
		EventID:     stored.EventID,
		UserID:      stored.UserID,
		Status:      stored.Status,
		CheckedInAt: stored.CheckedInAt,
	}, nil
}

// ListAttendance returns who checked in to an event, earliest first.
func (s *EventService) ListAttendance(ctx context.Context, id auth.Identity, eventID string) ([]*model.Attendance, *Error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load event")
	}
	if event.TeamID != id.TeamID {
		return nil, NewError(ErrorCodeNotFound, "event not found")
	}

	records, err := s.events.ListAttendance(ctx, eventID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list attendance")
	}

	attendance := make([]*model.Attendance, 0, len(records))
	for _, a := range records {
		attendance = append(attendance, &model.Attendance{
			EventID:     a.EventID,
			UserID:      a.UserID,
			Status:      a.Status,
			CheckedInAt: a.CheckedInAt,
		})
	}
	return attendance, nil
}

func (s *EventService) WithEventRepo(r repository.EventRepository) *EventService {
	s.events = r
	return s
}

func (s *EventService) WithFinanceRepo(r repository.FinanceRepository) *EventService {
	s.finances = r
	return s
}

func toModelEvent(ev *repository.Event) *model.Event {
	return &model.Event{
		ID:                ev.ID,
		TeamID:            ev.TeamID,
		Title:             ev.Title,
		Description:       ev.Description,
		StartTime:         ev.StartTime,
		EndTime:           ev.EndTime,
		EventType:         ev.EventType,
		Location:          ev.Location,
		CreatedBy:         ev.CreatedBy,
		IsRecurring:       ev.IsRecurring,
		RecurrencePattern: ev.RecurrencePattern,
		CreatedAt:         ev.CreatedAt,
	}
}

func ptr[T any](v T) *T {
	return &v
}
