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
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
)

type Message struct {
	ID               string            `db:"id"`
	TeamID           string            `db:"team_id"`
	UserID           string            `db:"user_id"`
	Content          string            `db:"content"`
	MessageType      model.MessageType `db:"message_type"`
	TaskID           *string           `db:"task_id"`
	CarpoolID        *string           `db:"carpool_id"`
	ResourceCategory *string           `db:"resource_category"`
	IsPinned         bool              `db:"is_pinned"`
	CreatedAt        *time.Time        `db:"created_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	ListByTeam(ctx context.Context, teamID string) ([]*Message, error)
	SetPinned(ctx context.Context, teamID, messageID string, pinned bool) (*Message, error)
}

type pgxMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgxMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &pgxMessageRepository{pool: pool}
}

const messageColumns = "id, team_id, user_id, content, message_type, task_id, carpool_id, resource_category, is_pinned, created_at"

func (p *pgxMessageRepository) Create(ctx context.Context, msg *Message) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("message", "id", "team_id", "user_id", "content", "message_type",
			"task_id", "carpool_id", "resource_category", "is_pinned"),
		im.Values(
			psql.Arg(msg.ID), psql.Arg(msg.TeamID), psql.Arg(msg.UserID), psql.Arg(msg.Content),
			psql.Arg(msg.MessageType), psql.Arg(msg.TaskID), psql.Arg(msg.CarpoolID),
			psql.Arg(msg.ResourceCategory), psql.Arg(msg.IsPinned),
		),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&msg.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}

// ListByTeam returns the team's messages, newest first.
func (p *pgxMessageRepository) ListByTeam(ctx context.Context, teamID string) ([]*Message, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "user_id", "content", "message_type",
			"task_id", "carpool_id", "resource_category", "is_pinned", "created_at"),
		sm.From("message"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("created_at").Desc(),
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

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Message, error) {
		m := &Message{}
		if err = row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Content, &m.MessageType,
			&m.TaskID, &m.CarpoolID, &m.ResourceCategory, &m.IsPinned, &m.CreatedAt); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// SetPinned updates the flag on the team's own message; a message id from
// another team matches no row and reports ErrNotFound.
func (p *pgxMessageRepository) SetPinned(ctx context.Context, teamID, messageID string, pinned bool) (*Message, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("message"),
		um.SetCol("is_pinned").ToArg(pinned),
		um.Where(
			psql.Quote("id").EQ(psql.Arg(messageID)).
				And(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		),
		um.Returning(messageColumns),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m := &Message{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&m.ID,
		&m.TeamID,
		&m.UserID,
		&m.Content,
		&m.MessageType,
		&m.TaskID,
		&m.CarpoolID,
		&m.ResourceCategory,
		&m.IsPinned,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return m, nil
}
