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

func TestFinanceService_Summary(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMocks    func(*MockFinanceRepository)
		expectedError bool
		errorCode     ErrorCode
		check         func(*testing.T, *model.FinanceSummary)
	}{
		{
			name: "totals, balance and category buckets",
			setupMocks: func(fr *MockFinanceRepository) {
				fr.On("ListByTeam", mock.Anything, "team1").Return([]*repository.FinanceRecord{
					{Type: model.FinanceIncome, Amount: 5000, Description: "Sponsor", Date: date},
					{Type: model.FinanceIncome, Amount: 250, Description: "Bake sale", Date: date},
					{Type: model.FinanceExpense, Amount: 1200, Description: "Motors", ExpenseCategory: ptr("parts"), Date: date},
					{Type: model.FinanceExpense, Amount: 300, Description: "Aluminum", ExpenseCategory: ptr("parts"), Date: date},
					{Type: model.FinanceExpense, Amount: 80, Description: "Pizza", Date: date},
				}, nil)
			},
			check: func(t *testing.T, s *model.FinanceSummary) {
				assert.Equal(t, 5250.0, s.TotalIncome)
				assert.Equal(t, 1580.0, s.TotalExpense)
				assert.Equal(t, 3670.0, s.Balance)
				assert.Equal(t, 1500.0, s.ByCategory["parts"])
				assert.Equal(t, 80.0, s.ByCategory["uncategorized"])
			},
		},
		{
			name: "empty ledger",
			setupMocks: func(fr *MockFinanceRepository) {
				fr.On("ListByTeam", mock.Anything, "team1").Return([]*repository.FinanceRecord{}, nil)
			},
			check: func(t *testing.T, s *model.FinanceSummary) {
				assert.Equal(t, 0.0, s.Balance)
				assert.Empty(t, s.ByCategory)
			},
		},
		{
			name: "failure: repository error",
			setupMocks: func(fr *MockFinanceRepository) {
				fr.On("ListByTeam", mock.Anything, "team1").Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockFinances := new(MockFinanceRepository)
			tt.setupMocks(mockFinances)

			service := NewFinanceService().
				WithFinanceRepo(mockFinances)

			got, err := service.Summary(context.Background(), identity)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				tt.check(t, got)
			}
			mockFinances.AssertExpectations(t)
		})
	}
}

func TestFinanceService_CreateRecord(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleMentor}
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mockFinances := new(MockFinanceRepository)
	mockFinances.On("Create", mock.Anything, mock.MatchedBy(func(r *repository.FinanceRecord) bool {
		return r.TeamID == "team1" && r.CreatedBy == "u1" && r.Amount == 450
	})).Return(nil)

	service := NewFinanceService().
		WithFinanceRepo(mockFinances)

	got, err := service.CreateRecord(context.Background(), identity, &model.FinanceRecord{
		Type: model.FinanceExpense, Amount: 450, Description: "Registration", Date: date,
	})

	assert.Nil(t, err)
	assert.Equal(t, "team1", got.TeamID)
	mockFinances.AssertExpectations(t)

	_, err = service.CreateRecord(context.Background(), auth.Identity{UserID: "u2"}, &model.FinanceRecord{
		Type: model.FinanceExpense, Amount: 1, Description: "x", Date: date,
	})
	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeNotOnTeam, err.Code)
}
