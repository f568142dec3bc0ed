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

type FinanceRecord struct {
	ID              string            `db:"id"`
	TeamID          string            `db:"team_id"`
	Type            model.FinanceType `db:"type"`
	Amount          float64           `db:"amount"`
	Description     string            `db:"description"`
	Category        *string           `db:"category"`
	ExpenseCategory *string           `db:"expense_category"`
	IncomeSource    *string           `db:"income_source"`
	Date            time.Time         `db:"date"`
	CreatedBy       string            `db:"created_by"`
}

type FinanceRepository interface {
	Create(ctx context.Context, record *FinanceRecord) error
	ListByTeam(ctx context.Context, teamID string) ([]*FinanceRecord, error)
}

type pgxFinanceRepository struct {
	pool *pgxpool.Pool
}

func NewPgxFinanceRepository(pool *pgxpool.Pool) FinanceRepository {
	return &pgxFinanceRepository{pool: pool}
}

func (p *pgxFinanceRepository) Create(ctx context.Context, record *FinanceRecord) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("finance", "id", "team_id", "type", "amount", "description",
			"category", "expense_category", "income_source", "date", "created_by"),
		im.Values(
			psql.Arg(record.ID), psql.Arg(record.TeamID), psql.Arg(record.Type), psql.Arg(record.Amount),
			psql.Arg(record.Description), psql.Arg(record.Category), psql.Arg(record.ExpenseCategory),
			psql.Arg(record.IncomeSource), psql.Arg(record.Date), psql.Arg(record.CreatedBy),
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

// ListByTeam returns the team's finance records, newest first.
func (p *pgxFinanceRepository) ListByTeam(ctx context.Context, teamID string) ([]*FinanceRecord, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "type", "amount", "description",
			"category", "expense_category", "income_source", "date", "created_by"),
		sm.From("finance"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("date").Desc(),
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

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*FinanceRecord, error) {
		r := &FinanceRecord{}
		if err = row.Scan(&r.ID, &r.TeamID, &r.Type, &r.Amount, &r.Description,
			&r.Category, &r.ExpenseCategory, &r.IncomeSource, &r.Date, &r.CreatedBy); err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
