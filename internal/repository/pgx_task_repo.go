package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
)

type Task struct {
	ID             string             `db:"id"`
	TeamID         string             `db:"team_id"`
	Title          string             `db:"title"`
	Description    *string            `db:"description"`
	Status         model.TaskStatus   `db:"status"`
	Priority       model.TaskPriority `db:"priority"`
	DueDate        *time.Time         `db:"due_date"`
	AssignedTo     *string            `db:"assigned_to"`
	CreatedBy      string             `db:"created_by"`
	Tags           []string           `db:"tags"`
	EstimatedHours *float64           `db:"estimated_hours"`
	ActualHours    *float64           `db:"actual_hours"`
}

type TaskPatch struct {
	ID          string            `db:"id"`
	Status      *model.TaskStatus `db:"status"`
	AssignedTo  *string           `db:"assigned_to"`
	ActualHours *float64          `db:"actual_hours"`
}

type TaskFilter struct {
	Status     *model.TaskStatus
	AssignedTo *string
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, taskID string) (*Task, error)
	ListByTeam(ctx context.Context, teamID string, filter TaskFilter) ([]*Task, error)
	ListDueByTeam(ctx context.Context, teamID string) ([]*Task, error)
	Patch(ctx context.Context, patch *TaskPatch) (*Task, error)
}

type pgxTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &pgxTaskRepository{pool: pool}
}

const taskColumns = "id, team_id, title, description, status, priority, due_date, assigned_to, created_by, tags, estimated_hours, actual_hours"

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.TeamID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.AssignedTo, &t.CreatedBy, &t.Tags, &t.EstimatedHours, &t.ActualHours)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *pgxTaskRepository) Create(ctx context.Context, task *Task) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("task", "id", "team_id", "title", "description", "status", "priority",
			"due_date", "assigned_to", "created_by", "tags", "estimated_hours", "actual_hours"),
		im.Values(
			psql.Arg(task.ID), psql.Arg(task.TeamID), psql.Arg(task.Title), psql.Arg(task.Description),
			psql.Arg(task.Status), psql.Arg(task.Priority), psql.Arg(task.DueDate),
			psql.Arg(task.AssignedTo), psql.Arg(task.CreatedBy), psql.Arg(task.Tags),
			psql.Arg(task.EstimatedHours), psql.Arg(task.ActualHours),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrAlreadyExists
		case "23503":
			return ErrNotFound
		}
	}
	return err
}

func (p *pgxTaskRepository) Get(ctx context.Context, taskID string) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "title", "description", "status", "priority",
			"due_date", "assigned_to", "created_by", "tags", "estimated_hours", "actual_hours"),
		sm.From("task"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(taskID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (p *pgxTaskRepository) ListByTeam(ctx context.Context, teamID string, filter TaskFilter) ([]*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "title", "description", "status", "priority",
			"due_date", "assigned_to", "created_by", "tags", "estimated_hours", "actual_hours"),
		sm.From("task"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("due_date").NullsLast(),
	)

	if filter.Status != nil {
		q.Apply(sm.Where(psql.Quote("status").EQ(psql.Arg(*filter.Status))))
	}
	if filter.AssignedTo != nil {
		q.Apply(sm.Where(psql.Quote("assigned_to").EQ(psql.Arg(*filter.AssignedTo))))
	}

	return p.list(ctx, e, q)
}

// ListDueByTeam returns only tasks with a due date; tasks without one never
// reach the calendar.
func (p *pgxTaskRepository) ListDueByTeam(ctx context.Context, teamID string) ([]*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "title", "description", "status", "priority",
			"due_date", "assigned_to", "created_by", "tags", "estimated_hours", "actual_hours"),
		sm.From("task"),
		sm.Where(
			psql.Quote("team_id").EQ(psql.Arg(teamID)).
				And(psql.Quote("due_date").IsNotNull()),
		),
		sm.OrderBy("due_date"),
	)

	return p.list(ctx, e, q)
}

func (p *pgxTaskRepository) list(ctx context.Context, e db.Executor, q bob.BaseQuery[*dialect.SelectQuery]) ([]*Task, error) {
	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (p *pgxTaskRepository) Patch(ctx context.Context, patch *TaskPatch) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 3)
	if patch.Status != nil {
		sets = append(sets, um.SetCol("status").ToArg(*patch.Status))
	}
	if patch.AssignedTo != nil {
		sets = append(sets, um.SetCol("assigned_to").ToArg(*patch.AssignedTo))
	}
	if patch.ActualHours != nil {
		sets = append(sets, um.SetCol("actual_hours").ToArg(*patch.ActualHours))
	}

	q := psql.Update(
		um.Table("task"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(taskColumns),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}
