package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
)

type Event struct {
	ID                string          `db:"id"`
	TeamID            string          `db:"team_id"`
	Title             string          `db:"title"`
	Description       *string         `db:"description"`
	StartTime         time.Time       `db:"start_time"`
	EndTime           time.Time       `db:"end_time"`
	EventType         model.EventType `db:"event_type"`
	Location          *string         `db:"location"`
	CreatedBy         string          `db:"created_by"`
	IsRecurring       bool            `db:"is_recurring"`
	RecurrencePattern *string         `db:"recurrence_pattern"`
	CreatedAt         *time.Time      `db:"created_at"`
}

type RSVP struct {
	EventID string           `db:"event_id"`
	UserID  string           `db:"user_id"`
	Status  model.RSVPStatus `db:"status"`
}

type Attendance struct {
	EventID     string    `db:"event_id"`
	UserID      string    `db:"user_id"`
	Status      string    `db:"status"`
	CheckedInAt time.Time `db:"checked_in_at"`
}

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	Get(ctx context.Context, eventID string) (*Event, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Event, error)
	UpsertRSVP(ctx context.Context, rsvp *RSVP) error
	CountYesRSVPs(ctx context.Context, teamID string) (map[string]int, error)
	InsertAttendance(ctx context.Context, att *Attendance) (*Attendance, error)
	ListAttendance(ctx context.Context, eventID string) ([]*Attendance, error)
}

type pgxEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgxEventRepository(pool *pgxpool.Pool) EventRepository {
	return &pgxEventRepository{pool: pool}
}

func (p *pgxEventRepository) Create(ctx context.Context, event *Event) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("event", "id", "team_id", "title", "description", "start_time", "end_time",
			"event_type", "location", "created_by", "is_recurring", "recurrence_pattern"),
		im.Values(
			psql.Arg(event.ID), psql.Arg(event.TeamID), psql.Arg(event.Title), psql.Arg(event.Description),
			psql.Arg(event.StartTime), psql.Arg(event.EndTime), psql.Arg(event.EventType),
			psql.Arg(event.Location), psql.Arg(event.CreatedBy), psql.Arg(event.IsRecurring),
			psql.Arg(event.RecurrencePattern),
		),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&event.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrAlreadyExists
		case "23503": // team or creator does not exist
			return ErrNotFound
		}
	}
	return err
}

func (p *pgxEventRepository) Get(ctx context.Context, eventID string) (*Event, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "title", "description", "start_time", "end_time",
			"event_type", "location", "created_by", "is_recurring", "recurrence_pattern", "created_at"),
		sm.From("event"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(eventID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	ev := &Event{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&ev.ID,
		&ev.TeamID,
		&ev.Title,
		&ev.Description,
		&ev.StartTime,
		&ev.EndTime,
		&ev.EventType,
		&ev.Location,
		&ev.CreatedBy,
		&ev.IsRecurring,
		&ev.RecurrencePattern,
		&ev.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

// ListByTeam returns the team's events ordered by start time ascending.
func (p *pgxEventRepository) ListByTeam(ctx context.Context, teamID string) ([]*Event, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "title", "description", "start_time", "end_time",
			"event_type", "location", "created_by", "is_recurring", "recurrence_pattern", "created_at"),
		sm.From("event"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("start_time"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Event, error) {
		ev := &Event{}
		if err = row.Scan(&ev.ID, &ev.TeamID, &ev.Title, &ev.Description, &ev.StartTime, &ev.EndTime,
			&ev.EventType, &ev.Location, &ev.CreatedBy, &ev.IsRecurring, &ev.RecurrencePattern, &ev.CreatedAt); err != nil {
			return nil, err
		}
		return ev, nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// UpsertRSVP stores the member's intent; a later RSVP for the same
// (event, user) pair overwrites the earlier one, never creates a duplicate.
func (p *pgxEventRepository) UpsertRSVP(ctx context.Context, rsvp *RSVP) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("event_rsvp", "event_id", "user_id", "status"),
		im.Values(psql.Arg(rsvp.EventID), psql.Arg(rsvp.UserID), psql.Arg(rsvp.Status)),
		im.OnConflict(psql.Quote("event_id"), psql.Quote("user_id")).DoUpdate(
			im.SetCol("status").ToArg(rsvp.Status),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}

	return err
}

// CountYesRSVPs returns, per event of the team, the number of "yes" RSVPs.
func (p *pgxEventRepository) CountYesRSVPs(ctx context.Context, teamID string) (map[string]int, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("event_rsvp.event_id", psql.Raw("count(*)")),
		sm.From("event_rsvp"),
		sm.LeftJoin("event").On(psql.Quote("event_rsvp", "event_id").EQ(psql.Quote("event", "id"))),
		sm.Where(
			psql.Quote("event", "team_id").EQ(psql.Arg(teamID)).
				And(psql.Quote("event_rsvp", "status").EQ(psql.Arg(model.RSVPYes))),
		),
		sm.GroupBy("event_rsvp.event_id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventID string
		var n int
		if err = rows.Scan(&eventID, &n); err != nil {
			return nil, err
		}
		counts[eventID] = n
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// InsertAttendance records a check-in. Idempotent per (event, user): a repeated
// check-in returns the original record with its first checked_in_at.
func (p *pgxEventRepository) InsertAttendance(ctx context.Context, att *Attendance) (*Attendance, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("attendance", "event_id", "user_id", "status", "checked_in_at"),
		im.Values(psql.Arg(att.EventID), psql.Arg(att.UserID), psql.Arg(att.Status), psql.Arg(att.CheckedInAt)),
		im.OnConflict(psql.Quote("event_id"), psql.Quote("user_id")).DoNothing(),
		im.Returning("event_id", "user_id", "status", "checked_in_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	stored := &Attendance{}
	err = e.QueryRow(ctx, sql, args...).Scan(&stored.EventID, &stored.UserID, &stored.Status, &stored.CheckedInAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: the check-in already exists, return it unchanged.
		return p.getAttendance(ctx, att.EventID, att.UserID)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (p *pgxEventRepository) getAttendance(ctx context.Context, eventID, userID string) (*Attendance, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("event_id", "user_id", "status", "checked_in_at"),
		sm.From("attendance"),
		sm.Where(
			psql.Quote("event_id").EQ(psql.Arg(eventID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	att := &Attendance{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&att.EventID, &att.UserID, &att.Status, &att.CheckedInAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return att, nil
}

func (p *pgxEventRepository) ListAttendance(ctx context.Context, eventID string) ([]*Attendance, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("event_id", "user_id", "status", "checked_in_at"),
		sm.From("attendance"),
		sm.Where(psql.Quote("event_id").EQ(psql.Arg(eventID))),
		sm.OrderBy("checked_in_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Attendance, error) {
		att := &Attendance{}
		if err = row.Scan(&att.EventID, &att.UserID, &att.Status, &att.CheckedInAt); err != nil {
			return nil, err
		}
		return att, nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
