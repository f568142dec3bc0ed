package repository

import (
	"context"

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

type Profile struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    *string    `db:"first_name"`
	LastName     *string    `db:"last_name"`
	Phone        *string    `db:"phone"`
	Role         model.Role `db:"role"`
	TeamID       *string    `db:"team_id"`
}

type ProfilePatch struct {
	ID        string      `db:"id"`
	FirstName *string     `db:"first_name"`
	LastName  *string     `db:"last_name"`
	Phone     *string     `db:"phone"`
	Role      *model.Role `db:"role"`
	TeamID    *string     `db:"team_id"`
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	Get(ctx context.Context, userID string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Patch(ctx context.Context, patch *ProfilePatch) (*Profile, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Profile, error)
}

type pgxProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgxProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgxProfileRepository{pool: pool}
}

const profileColumns = "id, email, password_hash, first_name, last_name, phone, role, team_id"

func (p *pgxProfileRepository) Create(ctx context.Context, profile *Profile) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("profile", "id", "email", "password_hash", "first_name", "last_name", "phone", "role", "team_id"),
		im.Values(
			psql.Arg(profile.ID), psql.Arg(profile.Email), psql.Arg(profile.PasswordHash),
			psql.Arg(profile.FirstName), psql.Arg(profile.LastName), psql.Arg(profile.Phone),
			psql.Arg(profile.Role), psql.Arg(profile.TeamID),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}

func (p *pgxProfileRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	return p.getWhere(ctx, "id", userID)
}

func (p *pgxProfileRepository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return p.getWhere(ctx, "email", email)
}

func (p *pgxProfileRepository) getWhere(ctx context.Context, column, value string) (*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "email", "password_hash", "first_name", "last_name", "phone", "role", "team_id"),
		sm.From("profile"),
		sm.Where(psql.Quote(column).EQ(psql.Arg(value))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pr := &Profile{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&pr.ID,
		&pr.Email,
		&pr.PasswordHash,
		&pr.FirstName,
		&pr.LastName,
		&pr.Phone,
		&pr.Role,
		&pr.TeamID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pr, nil
}

func (p *pgxProfileRepository) Patch(ctx context.Context, patch *ProfilePatch) (*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 5)
	if patch.FirstName != nil {
		sets = append(sets, um.SetCol("first_name").ToArg(*patch.FirstName))
	}
	if patch.LastName != nil {
		sets = append(sets, um.SetCol("last_name").ToArg(*patch.LastName))
	}
	if patch.Phone != nil {
		sets = append(sets, um.SetCol("phone").ToArg(*patch.Phone))
	}
	if patch.Role != nil {
		sets = append(sets, um.SetCol("role").ToArg(*patch.Role))
	}
	if patch.TeamID != nil {
		sets = append(sets, um.SetCol("team_id").ToArg(*patch.TeamID))
	}

	q := psql.Update(
		um.Table("profile"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(profileColumns),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pr := &Profile{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&pr.ID,
		&pr.Email,
		&pr.PasswordHash,
		&pr.FirstName,
		&pr.LastName,
		&pr.Phone,
		&pr.Role,
		&pr.TeamID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return pr, nil
}

func (p *pgxProfileRepository) ListByTeam(ctx context.Context, teamID string) ([]*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "email", "password_hash", "first_name", "last_name", "phone", "role", "team_id"),
		sm.From("profile"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("email"),
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

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Profile, error) {
		pr := &Profile{}
		if err = row.Scan(&pr.ID, &pr.Email, &pr.PasswordHash, &pr.FirstName, &pr.LastName, &pr.Phone, &pr.Role, &pr.TeamID); err != nil {
			return nil, err
		}
		return pr, nil
	})
	if err != nil {
		return nil, err
	}

	return profiles, nil
}
