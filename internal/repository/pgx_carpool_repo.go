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
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/robostack/teamhub/internal/db"
)

type Carpool struct {
	ID                string     `db:"id"`
	TeamID            string     `db:"team_id"`
	DriverID          string     `db:"driver_id"`
	EventID           *string    `db:"event_id"`
	DepartureLocation string     `db:"departure_location"`
	DepartureTime     time.Time  `db:"departure_time"`
	ReturnTime        *time.Time `db:"return_time"`
	AvailableSeats    int        `db:"available_seats"`
	Notes             *string    `db:"notes"`
}

type CarpoolRider struct {
	ID             string  `db:"id"`
	CarpoolID      string  `db:"carpool_id"`
	RiderID        string  `db:"rider_id"`
	PickupLocation *string `db:"pickup_location"`
}

type CarpoolRepository interface {
	Create(ctx context.Context, carpool *Carpool) error
	Get(ctx context.Context, carpoolID string) (*Carpool, error)
	// GetForUpdate locks the carpool row for the duration of the surrounding
	// transaction; the seat-capacity check depends on it.
	GetForUpdate(ctx context.Context, carpoolID string) (*Carpool, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Carpool, error)
	ListRiders(ctx context.Context, carpoolID string) ([]*CarpoolRider, error)
	ListRidersByTeam(ctx context.Context, teamID string) ([]*CarpoolRider, error)
	AddRider(ctx context.Context, rider *CarpoolRider) error
	RemoveRider(ctx context.Context, carpoolID, riderID string) error
}

type pgxCarpoolRepository struct {
	pool *pgxpool.Pool
}

func NewPgxCarpoolRepository(pool *pgxpool.Pool) CarpoolRepository {
	return &pgxCarpoolRepository{pool: pool}
}

func (p *pgxCarpoolRepository) Create(ctx context.Context, carpool *Carpool) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("carpool", "id", "team_id", "driver_id", "event_id", "departure_location",
			"departure_time", "return_time", "available_seats", "notes"),
		im.Values(
			psql.Arg(carpool.ID), psql.Arg(carpool.TeamID), psql.Arg(carpool.DriverID),
			psql.Arg(carpool.EventID), psql.Arg(carpool.DepartureLocation), psql.Arg(carpool.DepartureTime),
			psql.Arg(carpool.ReturnTime), psql.Arg(carpool.AvailableSeats), psql.Arg(carpool.Notes),
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

func (p *pgxCarpoolRepository) Get(ctx context.Context, carpoolID string) (*Carpool, error) {
	return p.get(ctx, carpoolID, false)
}

func (p *pgxCarpoolRepository) GetForUpdate(ctx context.Context, carpoolID string) (*Carpool, error) {
	return p.get(ctx, carpoolID, true)
}

func (p *pgxCarpoolRepository) get(ctx context.Context, carpoolID string, forUpdate bool) (*Carpool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "driver_id", "event_id", "departure_location",
			"departure_time", "return_time", "available_seats", "notes"),
		sm.From("carpool"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(carpoolID))),
	)

	if forUpdate {
		q.Apply(sm.ForUpdate("carpool"))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	cp := &Carpool{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&cp.ID,
		&cp.TeamID,
		&cp.DriverID,
		&cp.EventID,
		&cp.DepartureLocation,
		&cp.DepartureTime,
		&cp.ReturnTime,
		&cp.AvailableSeats,
		&cp.Notes,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cp, nil
}

// ListByTeam returns the team's carpools ordered by soonest departure.
func (p *pgxCarpoolRepository) ListByTeam(ctx context.Context, teamID string) ([]*Carpool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "driver_id", "event_id", "departure_location",
			"departure_time", "return_time", "available_seats", "notes"),
		sm.From("carpool"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("departure_time"),
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

	carpools, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Carpool, error) {
		cp := &Carpool{}
		if err = row.Scan(&cp.ID, &cp.TeamID, &cp.DriverID, &cp.EventID, &cp.DepartureLocation,
			&cp.DepartureTime, &cp.ReturnTime, &cp.AvailableSeats, &cp.Notes); err != nil {
			return nil, err
		}
		return cp, nil
	})
	if err != nil {
		return nil, err
	}

	return carpools, nil
}

func (p *pgxCarpoolRepository) ListRiders(ctx context.Context, carpoolID string) ([]*CarpoolRider, error) {
	q := psql.Select(
		sm.Columns("id", "carpool_id", "rider_id", "pickup_location"),
		sm.From("carpool_rider"),
		sm.Where(psql.Quote("carpool_id").EQ(psql.Arg(carpoolID))),
	)

	return p.listRiders(ctx, q)
}

func (p *pgxCarpoolRepository) ListRidersByTeam(ctx context.Context, teamID string) ([]*CarpoolRider, error) {
	q := psql.Select(
		sm.Columns("carpool_rider.id", "carpool_rider.carpool_id", "carpool_rider.rider_id", "carpool_rider.pickup_location"),
		sm.From("carpool_rider"),
		sm.LeftJoin("carpool").On(psql.Quote("carpool_rider", "carpool_id").EQ(psql.Quote("carpool", "id"))),
		sm.Where(psql.Quote("carpool", "team_id").EQ(psql.Arg(teamID))),
	)

	return p.listRiders(ctx, q)
}

func (p *pgxCarpoolRepository) listRiders(ctx context.Context, q bob.BaseQuery[*dialect.SelectQuery]) ([]*CarpoolRider, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	riders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*CarpoolRider, error) {
		r := &CarpoolRider{}
		if err = row.Scan(&r.ID, &r.CarpoolID, &r.RiderID, &r.PickupLocation); err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return riders, nil
}

func (p *pgxCarpoolRepository) AddRider(ctx context.Context, rider *CarpoolRider) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("carpool_rider", "id", "carpool_id", "rider_id", "pickup_location"),
		im.Values(psql.Arg(rider.ID), psql.Arg(rider.CarpoolID), psql.Arg(rider.RiderID), psql.Arg(rider.PickupLocation)),
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

func (p *pgxCarpoolRepository) RemoveRider(ctx context.Context, carpoolID, riderID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("carpool_rider"),
		dm.Where(
			psql.Quote("carpool_id").EQ(psql.Arg(carpoolID)).
				And(psql.Quote("rider_id").EQ(psql.Arg(riderID))),
		))

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
