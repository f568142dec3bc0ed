package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
)

func TestMessageService_Post(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}

	mockMessages := new(MockMessageRepository)
	mockMessages.On("Create", mock.Anything, mock.MatchedBy(func(m *repository.Message) bool {
		return m.TeamID == "team1" && m.UserID == "u1" && m.MessageType == model.MessageChat
	})).Return(nil)

	service := NewMessageService().
		WithMessageRepo(mockMessages)

	got, err := service.Post(context.Background(), identity, &model.Message{Content: "Meeting moved to 6pm"})

	assert.Nil(t, err)
	assert.Equal(t, model.MessageChat, got.MessageType)
	mockMessages.AssertExpectations(t)
}

func TestMessageService_SetPinned(t *testing.T) {
	organizer := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleAdmin}
	student := auth.Identity{UserID: "u2", TeamID: "team1", Role: model.RoleStudent}

	tests := []struct {
		name          string
		id            auth.Identity
		messageID     string
		setupMocks    func(*MockMessageRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "success: organizer pins",
			id:        organizer,
			messageID: "m1",
			setupMocks: func(mr *MockMessageRepository) {
				mr.On("SetPinned", mock.Anything, "team1", "m1", true).Return(&repository.Message{
					ID: "m1", TeamID: "team1", IsPinned: true,
				}, nil)
			},
			expectedError: false,
		},
		{
			name:          "failure: students cannot pin",
			id:            student,
			messageID:     "m1",
			setupMocks:    func(mr *MockMessageRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeForbidden,
		},
		{
			name:      "failure: message not found",
			id:        organizer,
			messageID: "missing",
			setupMocks: func(mr *MockMessageRepository) {
				mr.On("SetPinned", mock.Anything, "team1", "missing", true).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "failure: message on another team",
			id:        organizer,
			messageID: "m2",
			setupMocks: func(mr *MockMessageRepository) {
				// The update is scoped to the caller's team, so a foreign
				// message id matches no row.
				mr.On("SetPinned", mock.Anything, "team1", "m2", true).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMessages := new(MockMessageRepository)
			tt.setupMocks(mockMessages)

			service := NewMessageService().
				WithMessageRepo(mockMessages)

			got, err := service.SetPinned(context.Background(), tt.id, tt.messageID, true)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.True(t, got.IsPinned)
			}
			mockMessages.AssertExpectations(t)
		})
	}
}

func TestMessageService_SetPinnedNeverWritesAcrossTeams(t *testing.T) {
	organizer := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleAdmin}

	mockMessages := new(MockMessageRepository)
	mockMessages.On("SetPinned", mock.Anything, "team1", "m2", true).Return(nil, repository.ErrNotFound)

	service := NewMessageService().
		WithMessageRepo(mockMessages)

	got, err := service.SetPinned(context.Background(), organizer, "m2", true)

	assert.Nil(t, got)
	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeNotFound, err.Code)
	mockMessages.AssertNotCalled(t, "SetPinned", mock.Anything, "team2", "m2", true)
	mockMessages.AssertExpectations(t)
}
