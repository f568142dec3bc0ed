package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/firstapi"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

// CalendarTypeFilter selects which kinds of items appear.
type CalendarTypeFilter string

const (
	FilterAll         CalendarTypeFilter = "all"
	FilterEvent       CalendarTypeFilter = "event"
	FilterTask        CalendarTypeFilter = "task"
	FilterCompetition CalendarTypeFilter = "competition"
)

// CalendarQuery scopes one aggregation pass.
type CalendarQuery struct {
	Type CalendarTypeFilter
	// MemberID filters to items involving the member: event creator, task
	// assignee or task creator.
	MemberID string
	// From/To bound the viewing window; items overlapping the window
	// (inclusive) are kept. Zero values disable the bound.
	From time.Time
	To   time.Time
}

// CalendarView is one aggregation result. Warnings carry non-fatal failures
// (an unreachable schedule API must not blank the local calendar).
type CalendarView struct {
	Items    []model.CalendarItem `json:"items"`
	Warnings []string             `json:"warnings,omitempty"`
}

// CalendarService merges team events, due-dated tasks and external
// competition schedules into a single ordered, filterable sequence.
type CalendarService struct {
	events  repository.EventRepository
	tasks   repository.TaskRepository
	sources []firstapi.CompetitionSource

	season int
}

func NewCalendarService(season int) *CalendarService {
	return &CalendarService{season: season}
}

func (s *CalendarService) Aggregate(ctx context.Context, id auth.Identity, q CalendarQuery) (*CalendarView, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}
	if q.Type == "" {
		q.Type = FilterAll
	}

	events, err := s.events.ListByTeam(ctx, id.TeamID)
	if err != nil {
		l.Error("failed to fetch events", zap.String("team_id", id.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to fetch events")
	}

	tasks, err := s.tasks.ListDueByTeam(ctx, id.TeamID)
	if err != nil {
		l.Error("failed to fetch tasks", zap.String("team_id", id.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to fetch tasks")
	}

	participantCounts, err := s.events.CountYesRSVPs(ctx, id.TeamID)
	if err != nil {
		// Counts are decoration; render the calendar without them.
		l.Warn("failed to count RSVPs", zap.String("team_id", id.TeamID), zap.Error(err))
		participantCounts = map[string]int{}
	}

	view := &CalendarView{Items: make([]model.CalendarItem, 0, len(events)+len(tasks))}

	for _, ev := range events {
		view.Items = append(view.Items, projectEvent(ev, participantCounts[ev.ID]))
	}
	for _, t := range tasks {
		view.Items = append(view.Items, projectTask(t))
	}

	// External schedules are best-effort: a failed fetch degrades to a
	// warning and the local items render regardless.
	season := s.season
	if season == 0 {
		season = time.Now().Year()
	}
	for _, source := range s.sources {
		comps, err := source.SeasonEvents(ctx, season)
		if err != nil {
			l.Warn("competition schedule fetch failed", zap.Error(err))
			view.Warnings = append(view.Warnings, "competition schedule unavailable: "+err.Error())
			continue
		}
		for _, comp := range comps {
			if item, ok := projectCompetition(comp); ok {
				view.Items = append(view.Items, item)
			}
		}
	}

	view.Items = filterItems(view.Items, q)

	sort.SliceStable(view.Items, func(i, j int) bool {
		return view.Items[i].Start.Before(view.Items[j].Start)
	})

	return view, nil
}

func projectEvent(ev *repository.Event, participants int) model.CalendarItem {
	item := model.CalendarItem{
		ID:               ev.ID,
		Title:            ev.Title,
		Start:            ev.StartTime,
		End:              ev.EndTime,
		Kind:             model.KindEvent,
		SourceCategory:   string(ev.EventType),
		OwnerID:          ev.CreatedBy,
		ParticipantCount: participants,
	}
	if ev.Location != nil {
		item.Location = *ev.Location
	}
	return item
}

// projectTask uses the due date for both start and end: a same-instant item.
func projectTask(t *repository.Task) model.CalendarItem {
	item := model.CalendarItem{
		ID:       t.ID,
		Title:    t.Title,
		Start:    *t.DueDate,
		End:      *t.DueDate,
		Kind:     model.KindTask,
		OwnerID:  t.CreatedBy,
		Priority: string(t.Priority),
	}
	if t.AssignedTo != nil {
		item.AssignedTo = *t.AssignedTo
	}
	return item
}

// projectCompetition drops records with no start date; they cannot be placed
// on a calendar.
func projectCompetition(comp model.CompetitionEvent) (model.CalendarItem, bool) {
	if comp.DateStart == nil {
		return model.CalendarItem{}, false
	}
	end := *comp.DateStart
	if comp.DateEnd != nil {
		end = *comp.DateEnd
	}
	return model.CalendarItem{
		ID:             comp.Code,
		Title:          comp.Name,
		Start:          *comp.DateStart,
		End:            end,
		Kind:           model.KindCompetition,
		SourceCategory: comp.Type,
		Location:       comp.Address,
	}, true
}

func filterItems(items []model.CalendarItem, q CalendarQuery) []model.CalendarItem {
	filtered := make([]model.CalendarItem, 0, len(items))
	for _, item := range items {
		if !matchesType(item, q.Type) {
			continue
		}
		if q.MemberID != "" && !involvesMember(item, q.MemberID) {
			continue
		}
		if !q.From.IsZero() && item.End.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && item.Start.After(q.To) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// matchesType applies the type filter. The competition filter is the union
// of external competitions and locally created events typed "competition".
func matchesType(item model.CalendarItem, f CalendarTypeFilter) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterCompetition:
		return item.Kind == model.KindCompetition ||
			(item.Kind == model.KindEvent && item.SourceCategory == string(model.EventTypeCompetition))
	default:
		return string(item.Kind) == string(f)
	}
}

// involvesMember matches items the member is involved in: events they
// created, tasks assigned to them, tasks they created.
func involvesMember(item model.CalendarItem, memberID string) bool {
	return item.OwnerID == memberID || item.AssignedTo == memberID
}

func (s *CalendarService) WithEventRepo(r repository.EventRepository) *CalendarService {
	s.events = r
	return s
}

func (s *CalendarService) WithTaskRepo(r repository.TaskRepository) *CalendarService {
	s.tasks = r
	return s
}

func (s *CalendarService) WithCompetitionSources(sources ...firstapi.CompetitionSource) *CalendarService {
	s.sources = append(s.sources, sources...)
	return s
}
