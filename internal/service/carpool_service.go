package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

type CarpoolService struct {
	tx db.Transactor

	carpools repository.CarpoolRepository
}

func NewCarpoolService(tx db.Transactor) *CarpoolService {
	return &CarpoolService{tx: tx}
}

// CarpoolSort orders a carpool listing.
type CarpoolSort string

const (
	SortByDeparture CarpoolSort = "departure"
	SortBySeats     CarpoolSort = "seats"
)

type CarpoolListQuery struct {
	Class model.VehicleClass
	Sort  CarpoolSort
}

// CarpoolView decorates a carpool with occupancy derived from its rider
// rows and the viewer's eligibility.
type CarpoolView struct {
	model.Carpool
	Class          model.VehicleClass    `json:"class"`
	SeatsUsed      int                   `json:"seats_used"`
	SeatsRemaining int                   `json:"seats_remaining"`
	Eligibility    model.Eligibility     `json:"eligibility"`
	Riders         []*model.CarpoolRider `json:"riders"`
}

func (s *CarpoolService) Create(ctx context.Context, id auth.Identity, in *model.Carpool) (*model.Carpool, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "join a team to offer a carpool")
	}

	carpool := &repository.Carpool{
		ID:                uuid.NewString(),
		TeamID:            id.TeamID,
		DriverID:          id.UserID,
		EventID:           in.EventID,
		DepartureLocation: in.DepartureLocation,
		DepartureTime:     in.DepartureTime,
		ReturnTime:        in.ReturnTime,
		AvailableSeats:    in.AvailableSeats,
		Notes:             in.Notes,
	}

	if err := s.carpools.Create(ctx, carpool); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "referenced event not found")
		}
		l.Error("failed to create carpool", zap.String("team_id", id.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create carpool")
	}

	return toModelCarpool(carpool), nil
}

// List returns the team's carpools with occupancy and the caller's
// eligibility for each, optionally filtered by vehicle class.
func (s *CarpoolService) List(ctx context.Context, id auth.Identity, q CarpoolListQuery) ([]*CarpoolView, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	carpools, err := s.carpools.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list carpools")
	}

	riders, err := s.carpools.ListRidersByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list riders")
	}

	ridersByCarpool := make(map[string][]*model.CarpoolRider, len(carpools))
	for _, r := range riders {
		ridersByCarpool[r.CarpoolID] = append(ridersByCarpool[r.CarpoolID], &model.CarpoolRider{
			ID:             r.ID,
			CarpoolID:      r.CarpoolID,
			RiderID:        r.RiderID,
			PickupLocation: r.PickupLocation,
		})
	}

	views := make([]*CarpoolView, 0, len(carpools))
	for _, cp := range carpools {
		view := buildCarpoolView(toModelCarpool(cp), ridersByCarpool[cp.ID], id.UserID)
		if q.Class != "" && view.Class != q.Class {
			continue
		}
		views = append(views, view)
	}

	if q.Sort == SortBySeats {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].SeatsRemaining > views[j].SeatsRemaining
		})
	}

	return views, nil
}

// Join adds the caller as a rider. The seat check runs against a row locked
// for the transaction, so two concurrent joins of the last seat cannot both
// succeed.
func (s *CarpoolService) Join(ctx context.Context, id auth.Identity, carpoolID string, pickupLocation *string) (*model.CarpoolRider, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	rider := &repository.CarpoolRider{
		ID:             uuid.NewString(),
		CarpoolID:      carpoolID,
		RiderID:        id.UserID,
		PickupLocation: pickupLocation,
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		carpool, err := s.carpools.GetForUpdate(txCtx, carpoolID)
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "carpool not found")
		}
		if err != nil {
			l.Error("failed to lock carpool", zap.String("carpool_id", carpoolID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to load carpool")
		}

		if carpool.TeamID != id.TeamID {
			return NewError(ErrorCodeNotFound, "carpool not found")
		}
		if carpool.DriverID == id.UserID {
			return NewError(ErrorCodeDriverJoin, "the driver already has a seat")
		}

		current, err := s.carpools.ListRiders(txCtx, carpoolID)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to count riders")
		}
		for _, r := range current {
			if r.RiderID == id.UserID {
				return NewError(ErrorCodeAlreadyRiding, "already riding in this carpool")
			}
		}
		if len(current) >= carpool.AvailableSeats {
			return NewError(ErrorCodeCarpoolFull, "no seats remaining")
		}

		if err = s.carpools.AddRider(txCtx, rider); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return NewError(ErrorCodeAlreadyRiding, "already riding in this carpool")
			}
			l.Error("failed to add rider", zap.String("carpool_id", carpoolID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to join carpool")
		}

		return nil
	})

	var res *Error
	if errors.As(err, &res) {
		return nil, res
	}
	if err != nil {
		l.Error("join transaction failed", zap.String("carpool_id", carpoolID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to join carpool")
	}

	return &model.CarpoolRider{
		ID:             rider.ID,
		CarpoolID:      rider.CarpoolID,
		RiderID:        rider.RiderID,
		PickupLocation: rider.PickupLocation,
	}, nil
}

// Leave removes the caller's rider row, freeing the seat.
func (s *CarpoolService) Leave(ctx context.Context, id auth.Identity, carpoolID string) *Error {
	err := s.carpools.RemoveRider(ctx, carpoolID, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotRiding, "not riding in this carpool")
	}
	if err != nil {
		return NewError(ErrorCodeUnspecified, "failed to leave carpool")
	}
	return nil
}

func (s *CarpoolService) WithCarpoolRepo(r repository.CarpoolRepository) *CarpoolService {
	s.carpools = r
	return s
}

func buildCarpoolView(cp *model.Carpool, riders []*model.CarpoolRider, viewerID string) *CarpoolView {
	view := &CarpoolView{
		Carpool:        *cp,
		Class:          cp.Class(),
		SeatsUsed:      len(riders),
		SeatsRemaining: cp.AvailableSeats - len(riders),
		Riders:         riders,
	}
	if view.SeatsRemaining < 0 {
		view.SeatsRemaining = 0
	}

	switch {
	case cp.DriverID == viewerID:
		view.Eligibility = model.EligibilityDriver
	case riderIn(riders, viewerID):
		view.Eligibility = model.EligibilityRiding
	case view.SeatsRemaining == 0:
		view.Eligibility = model.EligibilityFull
	default:
		view.Eligibility = model.EligibilityCanJoin
	}
	return view
}

func riderIn(riders []*model.CarpoolRider, userID string) bool {
	for _, r := range riders {
		if r.RiderID == userID {
			return true
		}
	}
	return false
}

func toModelCarpool(cp *repository.Carpool) *model.Carpool {
	return &model.Carpool{
		ID:                cp.ID,
		TeamID:            cp.TeamID,
		DriverID:          cp.DriverID,
		EventID:           cp.EventID,
		DepartureLocation: cp.DepartureLocation,
		DepartureTime:     cp.DepartureTime,
		ReturnTime:        cp.ReturnTime,
		AvailableSeats:    cp.AvailableSeats,
		Notes:             cp.Notes,
	}
}
