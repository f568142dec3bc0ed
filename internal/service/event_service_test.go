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

func TestEventService_CreateEvent(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleMentor}
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		id            auth.Identity
		input         CreateEventInput
		setupMocks    func(*MockEventRepository, *MockFinanceRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success",
			id:   identity,
			input: CreateEventInput{
				Title: "Kickoff", StartTime: start, EndTime: start.Add(2 * time.Hour),
				EventType: model.EventTypeMeeting,
			},
			setupMocks: func(er *MockEventRepository, fr *MockFinanceRepository) {
				er.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: false,
		},
		{
			name: "success: outreach with work hours logs income",
			id:   identity,
			input: CreateEventInput{
				Title: "Food bank volunteering", StartTime: start, EndTime: start.Add(4 * time.Hour),
				EventType: model.EventTypeOutreach, WorkHours: 12,
			},
			setupMocks: func(er *MockEventRepository, fr *MockFinanceRepository) {
				er.On("Create", mock.Anything, mock.Anything).Return(nil)
				fr.On("Create", mock.Anything, mock.MatchedBy(func(r *repository.FinanceRecord) bool {
					return r.Type == model.FinanceIncome && r.Amount == 12
				})).Return(nil)
			},
			expectedError: false,
		},
		{
			name: "failure: not on a team",
			id:   auth.Identity{UserID: "u1"},
			input: CreateEventInput{
				Title: "Kickoff", StartTime: start, EndTime: start.Add(time.Hour),
				EventType: model.EventTypeMeeting,
			},
			setupMocks:    func(er *MockEventRepository, fr *MockFinanceRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeNotOnTeam,
		},
		{
			name: "failure: repository error",
			id:   identity,
			input: CreateEventInput{
				Title: "Kickoff", StartTime: start, EndTime: start.Add(time.Hour),
				EventType: model.EventTypeMeeting,
			},
			setupMocks: func(er *MockEventRepository, fr *MockFinanceRepository) {
				er.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEvents := new(MockEventRepository)
			mockFinances := new(MockFinanceRepository)

			tt.setupMocks(mockEvents, mockFinances)

			service := NewEventService(new(MockTransactor)).
				WithEventRepo(mockEvents).
				WithFinanceRepo(mockFinances)

			got, err := service.CreateEvent(context.Background(), tt.id, tt.input)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.input.Title, got.Title)
				assert.Equal(t, "team1", got.TeamID)
			}
			mockEvents.AssertExpectations(t)
			mockFinances.AssertExpectations(t)
		})
	}
}

func TestEventService_RSVP(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	event := &repository.Event{ID: "ev1", TeamID: "team1", Title: "Practice"}

	tests := []struct {
		name          string
		eventID       string
		status        model.RSVPStatus
		setupMocks    func(*MockEventRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:    "success: first response",
			eventID: "ev1",
			status:  model.RSVPYes,
			setupMocks: func(er *MockEventRepository) {
				er.On("Get", mock.Anything, "ev1").Return(event, nil)
				er.On("UpsertRSVP", mock.Anything, &repository.RSVP{
					EventID: "ev1", UserID: "u1", Status: model.RSVPYes,
				}).Return(nil)
			},
			expectedError: false,
		},
		{
			name:    "success: changing answer overwrites",
			eventID: "ev1",
			status:  model.RSVPNo,
			setupMocks: func(er *MockEventRepository) {
				er.On("Get", mock.Anything, "ev1").Return(event, nil)
				er.On("UpsertRSVP", mock.Anything, &repository.RSVP{
					EventID: "ev1", UserID: "u1", Status: model.RSVPNo,
				}).Return(nil)
			},
			expectedError: false,
		},
		{
			name:    "failure: event not found",
			eventID: "missing",
			status:  model.RSVPYes,
			setupMocks: func(er *MockEventRepository) {
				er.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:    "failure: event on another team",
			eventID: "ev2",
			status:  model.RSVPYes,
			setupMocks: func(er *MockEventRepository) {
				er.On("Get", mock.Anything, "ev2").Return(&repository.Event{
					ID: "ev2", TeamID: "team2",
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEvents := new(MockEventRepository)
			tt.setupMocks(mockEvents)

			service := NewEventService(new(MockTransactor)).
				WithEventRepo(mockEvents)

			got, err := service.RSVP(context.Background(), identity, tt.eventID, tt.status)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.status, got.Status)
			}
			mockEvents.AssertExpectations(t)
		})
	}
}

func TestEventService_CreateEventCommitFailure(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleMentor}
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	mockEvents := new(MockEventRepository)
	mockEvents.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewEventService(new(BrokenTransactor)).
		WithEventRepo(mockEvents)

	got, err := service.CreateEvent(context.Background(), identity, CreateEventInput{
		Title: "Scrimmage", StartTime: start, EndTime: start.Add(2 * time.Hour),
		EventType: model.EventTypePractice,
	})

	assert.Nil(t, got)
	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeUnspecified, err.Code)
}

func TestEventService_CheckInIsIdempotent(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	event := &repository.Event{ID: "ev1", TeamID: "team1"}
	first := time.Date(2026, 4, 1, 17, 3, 0, 0, time.UTC)

	mockEvents := new(MockEventRepository)
	mockEvents.On("Get", mock.Anything, "ev1").Return(event, nil)
	// The repository returns the already stored row on a repeated check-in.
	mockEvents.On("InsertAttendance", mock.Anything, mock.Anything).Return(&repository.Attendance{
		EventID: "ev1", UserID: "u1", Status: "present", CheckedInAt: first,
	}, nil)

	service := NewEventService(new(MockTransactor)).
		WithEventRepo(mockEvents)

	got, err := service.CheckIn(context.Background(), identity, "ev1")
	assert.Nil(t, err)
	assert.Equal(t, first, got.CheckedInAt)

	again, err := service.CheckIn(context.Background(), identity, "ev1")
	assert.Nil(t, err)
	assert.Equal(t, first, again.CheckedInAt)
}
