package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
)

func TestCarpoolService_Join(t *testing.T) {
	identity := auth.Identity{UserID: "rider1", TeamID: "team1", Role: model.RoleStudent}

	tests := []struct {
		name          string
		id            auth.Identity
		carpoolID     string
		setupMocks    func(*MockCarpoolRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "success: seat available",
			id:        identity,
			carpoolID: "cp1",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
					ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 2,
				}, nil)
				cr.On("ListRiders", mock.Anything, "cp1").Return([]*repository.CarpoolRider{
					{ID: "r1", CarpoolID: "cp1", RiderID: "other"},
				}, nil)
				cr.On("AddRider", mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: false,
		},
		{
			name:      "failure: no seats remaining",
			id:        identity,
			carpoolID: "cp1",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
					ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 1,
				}, nil)
				cr.On("ListRiders", mock.Anything, "cp1").Return([]*repository.CarpoolRider{
					{ID: "r1", CarpoolID: "cp1", RiderID: "other"},
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeCarpoolFull,
		},
		{
			name:      "failure: driver joining own carpool",
			id:        auth.Identity{UserID: "driver1", TeamID: "team1", Role: model.RoleStudent},
			carpoolID: "cp1",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
					ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 3,
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeDriverJoin,
		},
		{
			name:      "failure: already riding",
			id:        identity,
			carpoolID: "cp1",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
					ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 3,
				}, nil)
				cr.On("ListRiders", mock.Anything, "cp1").Return([]*repository.CarpoolRider{
					{ID: "r1", CarpoolID: "cp1", RiderID: "rider1"},
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyRiding,
		},
		{
			name:      "failure: concurrent insert loses to unique constraint",
			id:        identity,
			carpoolID: "cp1",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
					ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 3,
				}, nil)
				cr.On("ListRiders", mock.Anything, "cp1").Return([]*repository.CarpoolRider{}, nil)
				cr.On("AddRider", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyRiding,
		},
		{
			name:      "failure: carpool on another team is invisible",
			id:        identity,
			carpoolID: "cp2",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "cp2").Return(&repository.Carpool{
					ID: "cp2", TeamID: "team2", DriverID: "driver2", AvailableSeats: 3,
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "failure: carpool not found",
			id:        identity,
			carpoolID: "missing",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("GetForUpdate", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockRepo := new(MockCarpoolRepository)

			tt.setupMocks(mockRepo)

			service := NewCarpoolService(mockTx).
				WithCarpoolRepo(mockRepo)

			got, err := service.Join(context.Background(), tt.id, tt.carpoolID, nil)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.carpoolID, got.CarpoolID)
				assert.Equal(t, tt.id.UserID, got.RiderID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCarpoolService_Leave(t *testing.T) {
	identity := auth.Identity{UserID: "rider1", TeamID: "team1", Role: model.RoleStudent}

	tests := []struct {
		name          string
		setupMocks    func(*MockCarpoolRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("RemoveRider", mock.Anything, "cp1", "rider1").Return(nil)
			},
			expectedError: false,
		},
		{
			name: "failure: not riding",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("RemoveRider", mock.Anything, "cp1", "rider1").Return(repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotRiding,
		},
		{
			name: "failure: repository error",
			setupMocks: func(cr *MockCarpoolRepository) {
				cr.On("RemoveRider", mock.Anything, "cp1", "rider1").Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCarpoolRepository)
			tt.setupMocks(mockRepo)

			service := NewCarpoolService(new(MockTransactor)).
				WithCarpoolRepo(mockRepo)

			err := service.Leave(context.Background(), identity, "cp1")

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCarpoolService_List(t *testing.T) {
	departure := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	carpools := []*repository.Carpool{
		{ID: "car", TeamID: "team1", DriverID: "driver1", AvailableSeats: 4, DepartureTime: departure, DepartureLocation: "school"},
		{ID: "bus", TeamID: "team1", DriverID: "driver2", AvailableSeats: 20, DepartureTime: departure.Add(time.Hour), DepartureLocation: "school"},
	}
	riders := []*repository.CarpoolRider{
		{ID: "r1", CarpoolID: "car", RiderID: "rider1"},
		{ID: "r2", CarpoolID: "car", RiderID: "rider2"},
	}

	tests := []struct {
		name        string
		viewer      string
		query       CarpoolListQuery
		expectedIDs []string
		check       func(*testing.T, []*CarpoolView)
	}{
		{
			name:        "all carpools with occupancy",
			viewer:      "rider1",
			query:       CarpoolListQuery{},
			expectedIDs: []string{"car", "bus"},
			check: func(t *testing.T, views []*CarpoolView) {
				assert.Equal(t, 2, views[0].SeatsUsed)
				assert.Equal(t, 2, views[0].SeatsRemaining)
				assert.Equal(t, model.EligibilityRiding, views[0].Eligibility)
				assert.Equal(t, model.EligibilityCanJoin, views[1].Eligibility)
			},
		},
		{
			name:        "class filter keeps only buses",
			viewer:      "rider1",
			query:       CarpoolListQuery{Class: model.VehicleBus},
			expectedIDs: []string{"bus"},
		},
		{
			name:        "sort by remaining seats descending",
			viewer:      "rider1",
			query:       CarpoolListQuery{Sort: SortBySeats},
			expectedIDs: []string{"bus", "car"},
		},
		{
			name:        "driver sees own carpool as driver",
			viewer:      "driver1",
			query:       CarpoolListQuery{},
			expectedIDs: []string{"car", "bus"},
			check: func(t *testing.T, views []*CarpoolView) {
				assert.Equal(t, model.EligibilityDriver, views[0].Eligibility)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCarpoolRepository)
			mockRepo.On("ListByTeam", mock.Anything, "team1").Return(carpools, nil)
			mockRepo.On("ListRidersByTeam", mock.Anything, "team1").Return(riders, nil)

			service := NewCarpoolService(new(MockTransactor)).
				WithCarpoolRepo(mockRepo)

			id := auth.Identity{UserID: tt.viewer, TeamID: "team1", Role: model.RoleStudent}
			views, err := service.List(context.Background(), id, tt.query)

			assert.Nil(t, err)
			ids := make([]string, 0, len(views))
			for _, v := range views {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			if tt.check != nil {
				tt.check(t, views)
			}
		})
	}
}

func TestCarpoolService_ListFullCarpool(t *testing.T) {
	mockRepo := new(MockCarpoolRepository)
	mockRepo.On("ListByTeam", mock.Anything, "team1").Return([]*repository.Carpool{
		{ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 1},
	}, nil)
	mockRepo.On("ListRidersByTeam", mock.Anything, "team1").Return([]*repository.CarpoolRider{
		{ID: "r1", CarpoolID: "cp1", RiderID: "rider1"},
	}, nil)

	service := NewCarpoolService(new(MockTransactor)).
		WithCarpoolRepo(mockRepo)

	id := auth.Identity{UserID: "rider2", TeamID: "team1", Role: model.RoleStudent}
	views, err := service.List(context.Background(), id, CarpoolListQuery{})

	assert.Nil(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, 0, views[0].SeatsRemaining)
	assert.Equal(t, model.EligibilityFull, views[0].Eligibility)
}

func TestCarpoolService_JoinCommitFailure(t *testing.T) {
	mockRepo := new(MockCarpoolRepository)
	mockRepo.On("GetForUpdate", mock.Anything, "cp1").Return(&repository.Carpool{
		ID: "cp1", TeamID: "team1", DriverID: "driver1", AvailableSeats: 3,
	}, nil)
	mockRepo.On("ListRiders", mock.Anything, "cp1").Return([]*repository.CarpoolRider{}, nil)
	mockRepo.On("AddRider", mock.Anything, mock.Anything).Return(nil)

	service := NewCarpoolService(new(BrokenTransactor)).
		WithCarpoolRepo(mockRepo)

	id := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	got, err := service.Join(context.Background(), id, "cp1", nil)

	assert.Nil(t, got)
	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeUnspecified, err.Code)
}

func TestCarpoolService_JoinRequiresTeam(t *testing.T) {
	service := NewCarpoolService(new(MockTransactor)).
		WithCarpoolRepo(new(MockCarpoolRepository))

	_, err := service.Join(context.Background(), auth.Identity{UserID: "u1"}, "cp1", nil)

	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeNotOnTeam, err.Code)
}
